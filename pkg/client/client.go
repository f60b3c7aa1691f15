// Package client is the authenticated HTTP gateway to the ProofPoint API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proofpoint/proofpoint/pkg/credentials"
	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/metrics"
	"github.com/proofpoint/proofpoint/pkg/protocol"
	"github.com/proofpoint/proofpoint/pkg/retry"
)

// TokenSource supplies the bearer token at call time.
type TokenSource interface {
	Token() (string, error)
}

// Client calls the ProofPoint API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig retry.Config
	tokens      TokenSource

	mu             sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RetryConfig retry.Config // applied to CheckAuth and DashboardData only
	Tokens      TokenSource
	HTTPClient  *http.Client // overrides Timeout when set
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  hc,
		retryConfig: cfg.RetryConfig,
		tokens:      cfg.Tokens,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers fn to run whenever an authenticated call finds the
// session gone: a 401 response, or no usable saved token. The call then fails
// with ErrSessionExpired.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) expire(ctx context.Context, op string, cause error) error {
	logging.WithContext(ctx).Warn("session expired", zap.String("operation", op), zap.Error(cause))
	metrics.RecordForcedLogout()

	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
	return fmt.Errorf("%s: %w", op, ErrSessionExpired)
}

// call describes one API request.
type call struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	auth        bool
	retry       bool
	requestID   string
}

func jsonCall(op, method, path string, v any, auth bool) (call, error) {
	cl := call{op: op, method: method, path: path, auth: auth}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return call{}, fmt.Errorf("%s: encode request: %w", op, err)
		}
		cl.body = data
		cl.contentType = "application/json"
	}
	return cl, nil
}

// do sends cl and returns the response body of a 2xx reply. Retries happen
// only when cl.retry is set and the failure is a transport error or a 5xx.
func (c *Client) do(ctx context.Context, cl call) (*http.Response, error) {
	cl.requestID = uuid.NewString()
	ctx = logging.WithRequestID(ctx, cl.requestID)

	if !cl.retry {
		resp, err := c.send(ctx, cl)
		if err != nil {
			return nil, unwrapRetryable(err)
		}
		return resp, nil
	}

	return retry.DoWithResult(ctx, c.retryConfig, func() (*http.Response, error) {
		return c.send(ctx, cl)
	})
}

func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	log := logging.WithContext(ctx)

	var token string
	if cl.auth {
		if c.tokens == nil {
			return nil, c.expire(ctx, cl.op, credentials.ErrNoToken)
		}
		t, err := c.tokens.Token()
		if errors.Is(err, credentials.ErrNoToken) || errors.Is(err, credentials.ErrTokenExpired) {
			return nil, c.expire(ctx, cl.op, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read token: %w", cl.op, err)
		}
		token = t
	}

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cl.op, err)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", cl.requestID)
	if ce := log.Check(zap.DebugLevel, "api request"); ce != nil {
		ce.Write(zap.String("operation", cl.op), zap.String("method", cl.method), zap.String("path", cl.path))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(cl.op, 0, time.Since(start))
		log.Warn("api request failed", zap.String("operation", cl.op), zap.Error(err))
		return nil, retry.Retryable(fmt.Errorf("%s: %w", cl.op, err))
	}
	metrics.RecordAPIRequest(cl.op, resp.StatusCode, time.Since(start))
	log.Debug("api response",
		zap.String("operation", cl.op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && cl.auth {
		return nil, c.expire(ctx, cl.op, fmt.Errorf("server returned %d", resp.StatusCode))
	}

	apiErr := &APIError{Op: cl.op, StatusCode: resp.StatusCode}
	var errResp protocol.ErrorResponse
	if data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); len(data) > 0 {
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Message = errResp.Text()
		}
	}
	if resp.StatusCode >= 500 {
		log.Error("api server error", zap.String("operation", cl.op), zap.Int("status", resp.StatusCode))
		return nil, retry.Retryable(apiErr)
	}
	return nil, apiErr
}

func unwrapRetryable(err error) error {
	var re retry.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

func decodeJSON(op string, resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: parse response: %w", op, err)
	}
	return nil
}
