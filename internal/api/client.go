// Package api is the HTTP client for the chart backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/logging"
	"kabuchart/internal/models"
)

// Backend endpoints.
const (
	NikkeiPath  = "/api/nikkei"
	StockPath   = "/api/stock/{symbol}"
	NewsPath    = "/api/news"
	TickersPath = "/static/tse_list.json"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

// Client talks to the backend. It performs no retries.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   c,
		logger: logging.WithComponent(logger, "api"),
	}
}

// errorPayload is the backend's refusal shape.
type errorPayload struct {
	Error *string `json:"error"`
}

type stockPayload struct {
	History []models.Record `json:"history"`
	Info    struct {
		Name string `json:"name"`
	} `json:"info"`
	Error *string `json:"error"`
}

// Nikkei fetches the benchmark index history.
func (c *Client) Nikkei(ctx context.Context) (*models.StockHistory, error) {
	body, err := c.get(ctx, NikkeiPath, nil)
	if err != nil {
		return nil, err
	}

	if msg, ok := refusal(body); ok {
		return nil, apperrors.NewAPIError(NikkeiPath, models.NikkeiSymbol, msg)
	}
	points, err := models.DecodeRecords(body)
	if err != nil {
		return nil, decodeError(NikkeiPath, err)
	}
	return &models.StockHistory{
		Symbol:  models.NikkeiSymbol,
		Name:    models.NikkeiLabel,
		History: points,
	}, nil
}

// Stock fetches the history of symbol, which must already be normalized
// (code + ".T" or "^N225"). A backend refusal is returned as *errors.APIError.
func (c *Client) Stock(ctx context.Context, symbol string) (*models.StockHistory, error) {
	if symbol == "" {
		return nil, apperrors.ErrEmptySymbol
	}
	body, err := c.get(ctx, StockPath, map[string]string{"symbol": symbol})
	if err != nil {
		return nil, err
	}

	var payload stockPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, decodeError(StockPath, err)
	}
	if payload.Error != nil {
		return nil, apperrors.NewAPIError(StockPath, symbol, *payload.Error)
	}
	points, err := models.ParseRecords(payload.History)
	if err != nil {
		return nil, decodeError(StockPath, err)
	}
	return &models.StockHistory{
		Symbol:  symbol,
		Name:    payload.Info.Name,
		History: points,
	}, nil
}

// News fetches the headline list.
func (c *Client) News(ctx context.Context) ([]models.NewsArticle, error) {
	body, err := c.get(ctx, NewsPath, nil)
	if err != nil {
		return nil, err
	}

	if msg, ok := refusal(body); ok {
		return nil, apperrors.NewAPIError(NewsPath, "", msg)
	}
	var articles []models.NewsArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, decodeError(NewsPath, err)
	}
	return articles, nil
}

// Tickers fetches the static TSE listing.
func (c *Client) Tickers(ctx context.Context) ([]models.Ticker, error) {
	body, err := c.get(ctx, TickersPath, nil)
	if err != nil {
		return nil, err
	}

	var tickers []models.Ticker
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, decodeError(TickersPath, err)
	}
	return tickers, nil
}

// get issues a GET and returns the body. Non-2xx responses are still returned
// when they carry an {"error": ...} payload so callers can surface it.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		logging.LogAPICall(c.logger, http.MethodGet, path, time.Since(start), err)
	}()

	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetPathParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, apperrors.NewRequestError(path, 0, fmt.Errorf("%w: %v", apperrors.ErrConnectionFailed, err))
	}

	body = resp.Body()
	if !resp.IsSuccess() {
		if _, ok := refusal(body); ok {
			return body, nil
		}
		return nil, apperrors.NewRequestError(path, resp.StatusCode(), apperrors.ErrConnectionFailed)
	}
	return body, nil
}

// refusal extracts the message of an {"error": ...} object body.
func refusal(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var payload errorPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil || payload.Error == nil {
		return "", false
	}
	return *payload.Error, true
}

func decodeError(path string, err error) error {
	return apperrors.NewRequestError(path, 0, fmt.Errorf("%w: %v", apperrors.ErrDecode, err))
}
