package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
	"signal_bot/pkg/tracing"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"
)

type Config struct {
	SpotURL      string
	FuturesURL   string
	RecvWindowMs int64
	Timeout      time.Duration
	RPS          float64
	Burst        int
}

// Client REST-шлюз Binance (spot + USDT-M futures).
type Client struct {
	cfg     Config
	http    *http.Client
	clock   *Clock
	limiter *rate.Limiter
}

func New(cfg Config, clock *Clock) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		clock:   clock,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) Clock() *Clock { return c.clock }

func (c *Client) baseURL(futures bool) string {
	if futures {
		return strings.TrimRight(c.cfg.FuturesURL, "/")
	}
	return strings.TrimRight(c.cfg.SpotURL, "/")
}

// SyncTime пересчитывает смещение часов по /api/v3/time.
func (c *Client) SyncTime(ctx context.Context) error {
	return c.clock.Sync(ctx, c.ServerTime)
}

// Request подписанный запрос. При ошибке времени один раз синхронизирует часы и повторяет.
func (c *Client) Request(
	ctx context.Context,
	method, endpoint string,
	params url.Values,
	creds models.Credentials,
	futures bool,
) ([]byte, error) {
	return c.request(ctx, method, endpoint, params, creds, futures, true)
}

func (c *Client) request(
	ctx context.Context,
	method, endpoint string,
	params url.Values,
	creds models.Credentials,
	futures bool,
	retryOnTimeError bool,
) ([]byte, error) {
	signed := url.Values{}
	for k, v := range params {
		signed[k] = append([]string(nil), v...)
	}
	signed.Set("timestamp", strconv.FormatInt(c.clock.Now(), 10))
	if c.cfg.RecvWindowMs > 0 {
		signed.Set("recvWindow", strconv.FormatInt(c.cfg.RecvWindowMs, 10))
	}
	payload := signed.Encode()
	payload += "&signature=" + Sign(payload, creds.Secret)

	body, err := c.do(ctx, method, endpoint, payload, creds.Key, futures)
	if err == nil {
		return body, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Timestamp() && retryOnTimeError {
		logger.Warn("binance %s %s: %v, resync clock and retry", method, endpoint, apiErr)
		if syncErr := c.SyncTime(ctx); syncErr != nil {
			logger.Error("clock resync failed: %v", syncErr)
			return nil, err
		}
		return c.request(ctx, method, endpoint, params, creds, futures, false)
	}
	return nil, err
}

// Public запрос без подписи.
func (c *Client) Public(ctx context.Context, endpoint string, params url.Values, futures bool) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, params.Encode(), "", futures)
}

func (c *Client) do(
	ctx context.Context,
	method, endpoint string,
	encoded string,
	apiKey string,
	futures bool,
) (_ []byte, err error) {
	span, ctx := tracing.StartSpan(ctx, "binance "+endpoint)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = Classify(err).String()
		}
		metrics.GatewayRequests.WithLabelValues(endpoint, outcome).Inc()
		tracing.Finish(span, err)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: method + " " + endpoint, Err: err}
	}

	target := c.baseURL(futures) + endpoint

	var req *http.Request
	switch method {
	case http.MethodGet, http.MethodDelete:
		if encoded != "" {
			target += "?" + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	default:
		req, err = http.NewRequestWithContext(ctx, method, target, strings.NewReader(encoded))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("binance %s %s: %v", method, endpoint, err)
		return nil, &NetworkError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + endpoint, Err: err}
	}

	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

func decodeError(status int, data []byte) *APIError {
	var r struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil || r.Code == 0 {
		return &APIError{HTTPStatus: status, Msg: string(data)}
	}
	return &APIError{Code: r.Code, Msg: r.Msg, HTTPStatus: status}
}

// Sign HMAC-SHA256 от строки запроса.
func Sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
