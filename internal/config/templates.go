package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# kabuchart configuration

[api]
# Backend serving /api/stock, /api/nikkei, /api/news and /static/tse_list.json
base_url = "http://127.0.0.1:5000"
# Per-request timeout (e.g., "15s")
timeout = "15s"

[search]
# Codes suggested while the search box is empty
featured = ["7203", "6758", "9984", "8306", "6861"]
# Maximum number of suggestions shown
max_suggestions = 10

[chart]
width = 100
height = 24
# Symbol charted on startup
default_symbol = "^N225"

[ui]
# Enable colored output
color_enabled = true
# Show the intro splash once per terminal session
splash_enabled = true
# Delay between splash stages
splash_delay = "600ms"
# Date format for axis labels and tooltips
date_format = "2006/01/02"

[session]
# SQLite file holding session flags; leave empty to keep them in memory
# db_path = "~/.config/kabuchart/session.db"
ttl = "12h"

[logging]
# Level: debug, info, warn, error
level = "info"
file = true
max_size = 20
max_backups = 3
max_age = 14
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
