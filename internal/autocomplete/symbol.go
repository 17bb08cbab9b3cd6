package autocomplete

import (
	"strings"

	"kabuchart/internal/models"
)

// nikkeiAliases resolve to the index symbol, compared case-insensitively.
var nikkeiAliases = []string{
	models.NikkeiSymbol,
	"nikkei",
	"日経平均",
	"日経225",
	"にっけい",
}

// NormalizeSymbol turns confirmed input into a request symbol. Nikkei
// aliases become ^N225 and everything else gets the TSE suffix. Blank input
// returns false and must not trigger a request.
func NormalizeSymbol(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if IsNikkeiAlias(s) {
		return models.NikkeiSymbol, true
	}
	return s + models.TSESuffix, true
}

// IsNikkeiAlias reports whether s names the Nikkei 225 index.
func IsNikkeiAlias(s string) bool {
	for _, alias := range nikkeiAliases {
		if strings.EqualFold(s, alias) {
			return true
		}
	}
	return false
}
