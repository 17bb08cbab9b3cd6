package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kabuchart/internal/chart"
	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/models"
	"kabuchart/internal/store"
	"kabuchart/internal/viewer"
)

type stubSource struct {
	newsErr error
}

func points(closes ...float64) []models.PricePoint {
	start := time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = models.PricePoint{Date: start.AddDate(0, 0, 10*i), Open: c, High: c, Low: c, Close: c}
	}
	return pts
}

func (s *stubSource) Nikkei(ctx context.Context) (*models.StockHistory, error) {
	return &models.StockHistory{Symbol: models.NikkeiSymbol, Name: models.NikkeiLabel, History: points(33000, 34500, 35000, 34000)}, nil
}

func (s *stubSource) Stock(ctx context.Context, symbol string) (*models.StockHistory, error) {
	switch symbol {
	case "7201.T":
		return &models.StockHistory{Symbol: symbol, Name: "日産自動車", History: points(550, 540, 560)}, nil
	case "7203.T":
		return &models.StockHistory{Symbol: symbol, Name: "トヨタ自動車", History: points(2600, 2700)}, nil
	}
	return nil, apperrors.NewAPIError("/api/stock/{symbol}", symbol, "銘柄が見つかりません")
}

func (s *stubSource) News(ctx context.Context) ([]models.NewsArticle, error) {
	if s.newsErr != nil {
		return nil, s.newsErr
	}
	return []models.NewsArticle{{Title: "日経平均、反発", URL: "https://example.com/n/1", Description: "前場は買い優勢"}}, nil
}

func (s *stubSource) Tickers(ctx context.Context) ([]models.Ticker, error) {
	return []models.Ticker{
		{Code: "7203", Name: "トヨタ自動車"},
		{Code: "6758", Name: "ソニーグループ"},
		{Code: "7201", Name: "日産自動車"},
	}, nil
}

func newTestModel(t *testing.T, src viewer.DataSource) (Model, *viewer.Controller) {
	t.Helper()
	ctrl := viewer.NewController(src, viewer.Options{
		Featured:       []string{"7203", "6758"},
		MaxSuggestions: 10,
		Chart:          chart.Options{Width: 80, Height: 20, DateFormat: "2006/01/02"},
	}, zerolog.Nop())

	m := New(context.Background(), Options{
		Controller: ctrl,
		Store:      store.NewMemoryStore(),
		SessionID:  "test",
		Timeout:    time.Second,
		Logger:     zerolog.Nop(),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(t, m, startupMsg{startup: ctrl.FetchStartup(context.Background())})
	return m, ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestSearchAndConfirm(t *testing.T) {
	m, ctrl := newTestModel(t, &stubSource{})

	m = typeText(t, m, "72")
	require.Len(t, ctrl.Suggestions(), 2)
	assert.Contains(t, m.View(), "日産自動車")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, ctrl.Highlight())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Equal(t, "7201", m.input.Value())
	assert.Empty(t, ctrl.Suggestions())
	assert.True(t, m.loading)

	m = run(t, m, cmd)
	require.NotNil(t, ctrl.Chart())
	assert.Equal(t, "7201.T", ctrl.Chart().Symbol())
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "日産自動車 (終値)")
}

func TestClickConfirmsSuggestion(t *testing.T) {
	m, ctrl := newTestModel(t, &stubSource{})

	m = typeText(t, m, "72")
	require.Len(t, ctrl.Suggestions(), 2)

	// A click below the list is not a selection.
	m = update(t, m, tea.MouseMsg{X: 2, Y: chartTop + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Len(t, ctrl.Suggestions(), 2)
	assert.Equal(t, -1, ctrl.Highlight())

	next, cmd := m.Update(tea.MouseMsg{X: 2, Y: chartTop + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "7203", m.input.Value())
	assert.Empty(t, ctrl.Suggestions())
	assert.True(t, m.loading)

	m = run(t, m, cmd)
	require.NotNil(t, ctrl.Chart())
	assert.Equal(t, "7203.T", ctrl.Chart().Symbol())
}

func TestEscHidesSuggestions(t *testing.T) {
	m, ctrl := newTestModel(t, &stubSource{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Len(t, ctrl.Suggestions(), 2, "empty query shows featured tickers")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, ctrl.Suggestions())
	_ = m
}

func TestBlankEnterDoesNothing(t *testing.T) {
	m, _ := newTestModel(t, &stubSource{})
	m.loading = false

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestDomainErrorShowsAlert(t *testing.T) {
	m, ctrl := newTestModel(t, &stubSource{})

	m = typeText(t, m, "7203")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, next.(Model), cmd)
	installed := ctrl.Chart()
	require.NotNil(t, installed)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = typeText(t, m, "9")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, next.(Model), cmd)

	assert.Equal(t, "銘柄が見つかりません", m.alert)
	assert.Contains(t, m.View(), "銘柄が見つかりません")
	assert.Same(t, installed, ctrl.Chart(), "chart keeps its prior state")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.alert)
}

func TestStaleChartIsDropped(t *testing.T) {
	m, ctrl := newTestModel(t, &stubSource{})

	m = typeText(t, m, "7203")
	next, slow := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	m.input.SetValue("7201")
	next, fast := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	m = run(t, m, fast)
	m = run(t, m, slow)
	assert.Equal(t, "7201.T", ctrl.Chart().Symbol())
	assert.Empty(t, m.alert)
}

func TestMouseDrivesCrosshair(t *testing.T) {
	m, ctrl := newTestModel(t, &stubSource{})

	m = typeText(t, m, "7203")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, next.(Model), cmd)
	ch := ctrl.Chart()
	require.NotNil(t, ch)

	ox, oy := ch.PlotOrigin()
	m = update(t, m, tea.MouseMsg{X: ox, Y: chartTop + oy, Action: tea.MouseActionMotion})
	assert.True(t, ch.Crosshair().Active)
	assert.Contains(t, m.View(), "終値: 2600.00")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, ch.Crosshair().Active)
}

func TestNewsPane(t *testing.T) {
	m, _ := newTestModel(t, &stubSource{})
	assert.Contains(t, m.View(), "日経平均、反発")

	m, _ = newTestModel(t, &stubSource{newsErr: apperrors.ErrConnectionFailed})
	assert.Contains(t, m.View(), "ニュースの読み込みに失敗しました。")
}

func TestSplashOncePerSession(t *testing.T) {
	s := store.NewMemoryStore()
	ctrl := viewer.NewController(&stubSource{}, viewer.Options{}, zerolog.Nop())
	opts := Options{
		Controller:  ctrl,
		Store:       s,
		SessionID:   "tty-1",
		Splash:      true,
		SplashDelay: time.Millisecond,
		Logger:      zerolog.Nop(),
	}

	first := New(context.Background(), opts)
	assert.Equal(t, splashTitle, first.splashStage)
	assert.Contains(t, first.View(), "kabuchart")

	first = update(t, first, splashMsg{stage: splashSubtitle})
	assert.True(t, strings.Contains(first.View(), "日経平均と東証銘柄のチャート"))
	first = update(t, first, splashMsg{stage: splashDone})
	assert.Equal(t, splashDone, first.splashStage)

	second := New(context.Background(), opts)
	assert.Equal(t, splashDone, second.splashStage)

	opts.SessionID = "tty-2"
	third := New(context.Background(), opts)
	assert.Equal(t, splashTitle, third.splashStage)

	// Any key skips the splash.
	third = update(t, third, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, splashDone, third.splashStage)
}
