package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/models"
)

const nikkeiBody = `[
	{"Date": "Thu, 04 Jan 2024 00:00:00 GMT", "Open": 33193.05, "High": 33568.04, "Low": 32693.18, "Close": 33288.29},
	{"Date": "Fri, 05 Jan 2024 00:00:00 GMT", "Open": 33300.0, "High": 33400.0, "Low": 33100.0, "Close": 33377.42}
]`

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(NikkeiPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nikkeiBody))
	})
	mux.HandleFunc("/api/stock/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch strings.TrimPrefix(r.URL.Path, "/api/stock/") {
		case "7203.T":
			_, _ = w.Write([]byte(`{"history": [{"Date": "2024-01-04", "Open": 2600, "High": 2650, "Low": 2590, "Close": 2640}], "info": {"name": "トヨタ自動車"}}`))
		case "^N225":
			_, _ = w.Write([]byte(`{"history": [{"Date": "2024-01-04", "Close": 33288.29}], "info": {}}`))
		case "0000.T":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "銘柄が見つかりません"}`))
		case "9999.T":
			_, _ = w.Write([]byte(`{"history": [{"Date": "yesterday"}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	mux.HandleFunc(NewsPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title": "日経平均、反発", "url": "https://example.com/1", "description": "前場は買い優勢"}]`))
	})
	mux.HandleFunc(TickersPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"code": "7203", "name": "トヨタ自動車"}, {"code": "6758", "name": "ソニーグループ"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(url, 2*time.Second, zerolog.Nop())
}

func TestNikkei(t *testing.T) {
	c := newTestClient(newBackend(t).URL)

	h, err := c.Nikkei(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.NikkeiSymbol, h.Symbol)
	assert.Equal(t, "日経平均株価 (終値)", h.Label())
	require.Len(t, h.History, 2)
	assert.Equal(t, 33288.29, h.History[0].Close)
	assert.Equal(t, time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC), h.History[0].Date.UTC())
}

func TestStock(t *testing.T) {
	c := newTestClient(newBackend(t).URL)

	h, err := c.Stock(context.Background(), "7203.T")
	require.NoError(t, err)
	assert.Equal(t, "7203.T", h.Symbol)
	assert.Equal(t, "トヨタ自動車", h.Name)
	require.Len(t, h.History, 1)
	assert.Equal(t, 2640.0, h.History[0].Close)
}

func TestStockEscapesIndexSymbol(t *testing.T) {
	c := newTestClient(newBackend(t).URL)

	h, err := c.Stock(context.Background(), models.NikkeiSymbol)
	require.NoError(t, err)
	assert.Equal(t, "^N225 (終値)", h.Label())
	assert.Equal(t, 0.0, h.History[0].Open)
}

func TestStockBackendRefusal(t *testing.T) {
	c := newTestClient(newBackend(t).URL)

	_, err := c.Stock(context.Background(), "0000.T")
	require.Error(t, err)
	assert.True(t, apperrors.IsDomain(err))

	var apiErr *apperrors.APIError
	require.True(t, apperrors.As(err, &apiErr))
	assert.Equal(t, "銘柄が見つかりません", apiErr.Message)
	assert.Equal(t, "0000.T", apiErr.Symbol)
}

func TestStockFailures(t *testing.T) {
	c := newTestClient(newBackend(t).URL)

	_, err := c.Stock(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrEmptySymbol)

	_, err = c.Stock(context.Background(), "9999.T")
	assert.ErrorIs(t, err, apperrors.ErrDecode)
	assert.False(t, apperrors.IsDomain(err))

	_, err = c.Stock(context.Background(), "1111.T")
	assert.ErrorIs(t, err, apperrors.ErrConnectionFailed)
	var reqErr *apperrors.RequestError
	require.True(t, apperrors.As(err, &reqErr))
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
}

func TestNewsAndTickers(t *testing.T) {
	c := newTestClient(newBackend(t).URL)

	news, err := c.News(context.Background())
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "日経平均、反発", news[0].Title)

	tickers, err := c.Tickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Ticker{
		{Code: "7203", Name: "トヨタ自動車"},
		{Code: "6758", Name: "ソニーグループ"},
	}, tickers)
}

func TestNewsRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "news unavailable"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).News(context.Background())
	assert.True(t, apperrors.IsDomain(err))
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Tickers(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConnectionFailed)
}
