// Package tui is the interactive terminal front end: a search box with
// suggestions, the chart pane with a pointer-driven crosshair, and a news
// pane.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"kabuchart/internal/chart"
	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/logging"
	"kabuchart/internal/models"
	"kabuchart/internal/store"
	"kabuchart/internal/viewer"
)

// Splash stages.
const (
	splashTitle = iota
	splashSubtitle
	splashDone
)

// Screen rows above the chart pane: header and search box.
const chartTop = 2

const suggestionWidth = 36

// Options configures the TUI.
type Options struct {
	Controller    *viewer.Controller
	Store         store.SessionStore
	SessionID     string
	InitialSymbol string
	Splash        bool
	SplashDelay   time.Duration
	Timeout       time.Duration
	Logger        zerolog.Logger
}

// Model is the bubbletea model.
type Model struct {
	ctrl        *viewer.Controller
	logger      zerolog.Logger
	timeout     time.Duration
	initial     string
	input       textinput.Model
	news        viewport.Model
	ready       bool
	newsLoaded  bool
	width       int
	height      int
	chartHeight int
	loading     bool
	status      string
	alert       string
	splashStage int
	splashDelay time.Duration
}

// New creates the model. The splash is shown only if it has not been shown
// in this session yet.
func New(ctx context.Context, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "検索 ▸ "
	ti.PromptStyle = promptStyle
	ti.Placeholder = "銘柄コード (例: 7203)"
	ti.CharLimit = 16
	ti.Focus()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	m := Model{
		ctrl:        opts.Controller,
		logger:      logging.WithComponent(opts.Logger, "tui"),
		timeout:     timeout,
		initial:     opts.InitialSymbol,
		input:       ti,
		loading:     true,
		splashStage: splashDone,
		splashDelay: opts.SplashDelay,
	}
	if opts.Splash && claimSplash(ctx, opts.Store, opts.SessionID, m.logger) {
		m.splashStage = splashTitle
	}
	return m
}

// claimSplash reports whether the splash is due and marks it shown.
func claimSplash(ctx context.Context, s store.SessionStore, session string, logger zerolog.Logger) bool {
	if s == nil {
		return true
	}
	shown, err := s.IsSet(ctx, session, store.FlagIntroShown)
	if err != nil {
		logger.Warn().Err(err).Msg("Session store unavailable, skipping splash")
		return false
	}
	if shown {
		return false
	}
	if err := s.Set(ctx, session, store.FlagIntroShown); err != nil {
		logger.Warn().Err(err).Msg("Failed to record splash")
	}
	return true
}

// Init starts the startup loads and the initial chart request.
func (m Model) Init() tea.Cmd {
	req := m.ctrl.Initial(m.initial)
	cmds := []tea.Cmd{textinput.Blink, m.startupCmd(), m.fetchCmd(req)}
	if m.splashStage != splashDone {
		cmds = append(cmds, splashCmd(m.splashDelay, m.splashStage+1))
	}
	return tea.Batch(cmds...)
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case splashMsg:
		if m.splashStage == splashDone {
			return m, nil
		}
		m.splashStage = msg.stage
		if msg.stage < splashDone {
			return m, splashCmd(m.splashDelay, msg.stage+1)
		}
		return m, nil

	case startupMsg:
		res := m.ctrl.ApplyStartup(msg.startup)
		m.newsLoaded = true
		if res.TickersErr != nil {
			m.status = "銘柄リストを読み込めませんでした"
		}
		m.refreshNews()
		return m, nil

	case chartMsg:
		return m.applyChart(msg), nil

	case tea.MouseMsg:
		if m.alert == "" && m.splashStage == splashDone {
			if m.clicksSuggestion(msg) {
				return m.confirm()
			}
			m.ctrl.PointerAt(msg.X, msg.Y-chartTop)
		}
		if m.ready {
			var cmd tea.Cmd
			m.news, cmd = m.news.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.splashStage != splashDone {
		m.splashStage = splashDone
		return m, nil
	}
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc":
			m.alert = ""
		}
		return m, nil
	}

	suggesting := len(m.ctrl.Suggestions()) > 0
	switch msg.String() {
	case "up", "down":
		if !suggesting {
			var cmd tea.Cmd
			m.news, cmd = m.news.Update(msg)
			return m, cmd
		}
		if msg.String() == "up" {
			m.ctrl.Move(-1)
		} else {
			m.ctrl.Move(1)
		}
		return m, nil

	case "enter":
		return m.confirm()

	case "esc":
		if suggesting {
			m.ctrl.Dismiss()
		} else {
			m.ctrl.PointerOut()
		}
		return m, nil

	case "tab":
		m.ctrl.Input(m.input.Value())
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.news, cmd = m.news.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.Input(v)
	}
	return m, cmd
}

// clicksSuggestion highlights the suggestion row under a left click.
// Suggestion rows cover the top lines of the chart pane.
func (m Model) clicksSuggestion(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	row := msg.Y - chartTop
	if msg.X < 0 || msg.X >= suggestionWidth || row >= m.chartHeight {
		return false
	}
	return m.ctrl.Select(row)
}

// confirm requests the chart for the highlighted suggestion or the typed code.
func (m Model) confirm() (tea.Model, tea.Cmd) {
	req, ok := m.ctrl.Confirm(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.SetValue(req.Code)
	m.input.CursorEnd()
	m.loading = true
	m.status = ""
	return m, m.fetchCmd(req)
}

// applyChart installs a finished chart request. Responses to superseded
// requests are dropped without touching the screen.
func (m Model) applyChart(msg chartMsg) Model {
	log := logging.WithSymbol(m.logger, msg.req.Symbol)
	if !m.ctrl.IsCurrent(msg.req) {
		log.Debug().Msg("Dropping stale chart response")
		return m
	}
	m.loading = false

	if msg.err != nil {
		var apiErr *apperrors.APIError
		if apperrors.As(msg.err, &apiErr) {
			m.alert = apiErr.Message
			return m
		}
		log.Error().Err(msg.err).Msg("Chart request failed")
		m.status = "チャートを読み込めませんでした"
		return m
	}

	if _, err := m.ctrl.Apply(msg.res); err != nil {
		if apperrors.Is(err, apperrors.ErrStaleResponse) {
			return m
		}
		log.Warn().Err(err).Msg("Chart not rendered")
		m.status = fmt.Sprintf("%s: データがありません", msg.req.Code)
	}
	return m
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	avail := height - chartTop - 1
	chartHeight := avail * 2 / 3
	if chartHeight < chart.MinHeight+1 {
		chartHeight = chart.MinHeight + 1
	}
	newsHeight := avail - chartHeight
	if newsHeight < 1 {
		newsHeight = 1
	}
	m.chartHeight = chartHeight

	chartWidth := width
	if chartWidth < chart.MinWidth {
		chartWidth = chart.MinWidth
	}
	// One row stays free for the tooltip line.
	if err := m.ctrl.Resize(chartWidth, chartHeight-1); err != nil {
		m.logger.Warn().Err(err).Msg("Chart resize failed")
	}

	m.input.Width = width - lipgloss.Width(m.input.Prompt) - 1
	if !m.ready {
		m.news = viewport.New(width, newsHeight)
		m.news.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.news.Width = width
		m.news.Height = newsHeight
	}
	m.refreshNews()
}

func (m *Model) refreshNews() {
	if !m.ready {
		return
	}
	articles, err := m.ctrl.News()
	m.news.SetContent(renderNews(articles, err, m.newsLoaded, m.width))
	m.news.GotoTop()
}

func renderNews(articles []models.NewsArticle, err error, loaded bool, width int) string {
	switch {
	case !loaded:
		return dimStyle.Render("ニュースを読み込み中...")
	case err != nil:
		return newsErrorStyle.Render("ニュースの読み込みに失敗しました。")
	case len(articles) == 0:
		return dimStyle.Render("ニュースはありません。")
	}

	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for i, a := range articles {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(wrap.Render(newsTitleStyle.Render(a.Title)))
		b.WriteByte('\n')
		if a.Description != "" {
			b.WriteString(wrap.Render(dimStyle.Render(a.Description)))
			b.WriteByte('\n')
		}
		if a.URL != "" {
			b.WriteString(newsURLStyle.Render(a.URL))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// View renders the screen.
func (m Model) View() string {
	if m.splashStage != splashDone {
		return m.splashView()
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.chartPane())
	b.WriteByte('\n')
	b.WriteString(m.news.View())
	b.WriteByte('\n')
	b.WriteString(footerStyle.Width(m.width).Render(" ↑/↓ 選択  Enter 表示  Esc 閉じる  Tab 注目銘柄  PgUp/PgDn ニュース  Ctrl+C 終了"))
	return b.String()
}

func (m Model) headerView() string {
	text := " kabuchart"
	if ch := m.ctrl.Chart(); ch != nil {
		text += "  " + ch.Label()
	}
	if m.loading {
		text += "  " + "読み込み中..."
	}
	if m.status != "" {
		text += "  " + statusStyle.Render(m.status)
	}
	return headerStyle.Width(m.width).Render(text)
}

// chartPane renders the chart with the suggestion panel or the alert over it.
func (m Model) chartPane() string {
	if m.alert != "" {
		box := alertStyle.Render(alertTitleStyle.Render("エラー") + "\n\n" + m.alert + "\n\n" + dimStyle.Render("Enter / Esc で閉じる"))
		return lipgloss.Place(m.width, m.chartHeight, lipgloss.Center, lipgloss.Center, box)
	}

	var lines []string
	if ch := m.ctrl.Chart(); ch != nil {
		lines = strings.Split(ch.Render(), "\n")
	} else if !m.loading {
		lines = []string{dimStyle.Render("チャートがありません")}
	}
	for len(lines) < m.chartHeight {
		lines = append(lines, "")
	}
	lines = lines[:m.chartHeight]

	highlight := m.ctrl.Highlight()
	for i, t := range m.ctrl.Suggestions() {
		if i >= len(lines) {
			break
		}
		style := suggestionStyle
		if i == highlight {
			style = highlightStyle
		}
		lines[i] = style.Width(suggestionWidth).Render(fmt.Sprintf(" %s  %s", codeStyle.Inherit(style).Render(t.Code), t.Name))
	}
	return strings.Join(lines, "\n")
}

func (m Model) splashView() string {
	content := splashStyle.Render("kabuchart")
	if m.splashStage >= splashSubtitle {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", dimStyle.Render("日経平均と東証銘柄のチャート"))
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
