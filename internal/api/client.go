// Package api is the REST client for the SMS backend: wire DTOs, the error
// taxonomy and the middleware pipeline for cross-cutting concerns (request
// correlation, metrics, throttling, bearer injection, token refresh).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Config carries the deployment-time settings for the client.
type Config struct {
	// BaseURL of the backend, e.g. https://sms.example.com
	BaseURL string
	// Tokens provides and persists the session token pair. Required.
	Tokens TokenSource
	// Logger defaults to a nop logger.
	Logger *zap.Logger
	// Timeout per request; defaults to 30s to match the product client.
	Timeout time.Duration
	// RequestsPerSecond bounds the outbound rate; 0 disables throttling.
	RequestsPerSecond float64
}

// Client talks to the SMS backend. All methods return errors from the
// package taxonomy; no raw transport or HTTP errors escape.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// New builds the client with the full middleware pipeline. The refresh call
// issued from inside the pipeline uses a clean client so it can never
// recurse into the pipeline itself.
func New(cfg Config) (*Client, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("api: token source is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", cfg.BaseURL)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialer := &net.Dialer{Timeout: timeout}
	baseTransport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	bare := &http.Client{Timeout: timeout, Transport: baseTransport}
	c := &Client{base: base, log: log}

	var rt http.RoundTripper = &observeTransport{next: baseTransport, log: log}
	if cfg.RequestsPerSecond > 0 {
		rt = &throttleTransport{
			next:    rt,
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1),
		}
	}
	rt = &authTransport{
		next:    rt,
		tokens:  cfg.Tokens,
		refresh: refreshWith(bare, base),
	}
	c.http = &http.Client{Timeout: timeout, Transport: rt}
	return c, nil
}

// refreshWith builds the refreshFunc used by the auth transport.
func refreshWith(bare *http.Client, base *url.URL) refreshFunc {
	return func(ctx context.Context, refreshToken string) (AuthResponse, error) {
		body, err := json.Marshal(RefreshTokenRequest{RefreshToken: refreshToken})
		if err != nil {
			return AuthResponse{}, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String()+"/auth/refresh", bytes.NewReader(body))
		if err != nil {
			return AuthResponse{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := bare.Do(req)
		if err != nil {
			return AuthResponse{}, ErrorFromTransport(err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return AuthResponse{}, ErrorFromTransport(err)
		}
		if resp.StatusCode != http.StatusOK {
			return AuthResponse{}, ErrorFromStatus(resp.StatusCode, raw)
		}
		var auth AuthResponse
		if err := json.Unmarshal(raw, &auth); err != nil {
			return AuthResponse{}, malformedError(err)
		}
		return auth, nil
	}
}

// --- Auth endpoints ---

func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", req, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &out)
	return out, err
}

func (c *Client) OAuthLogin(ctx context.Context, req OAuthLoginRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/oauth/login", req, &out)
	return out, err
}

func (c *Client) GoogleSignIn(ctx context.Context, req GoogleSignInRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/google", req, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", req, &out)
	return out, err
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// --- Safety endpoints ---

func (c *Client) SubmitEvaluation(ctx context.Context, req EvaluationRequest) (EvaluationResponse, error) {
	var out EvaluationResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/safety", req, &out)
	return out, err
}

// History lists evaluation records. An empty pilotName asks for all records.
func (c *Client) History(ctx context.Context, pilotName string) ([]EvaluationResponse, error) {
	path := "/api/v1/safety/history"
	if pilotName != "" {
		path += "?pilotName=" + url.QueryEscape(pilotName)
	}
	var out []EvaluationResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Evaluation(ctx context.Context, id int64) (EvaluationResponse, error) {
	var out EvaluationResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/safety/%d", id), nil, &out)
	return out, err
}

// do issues one request and normalizes every failure into the taxonomy.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	var raw []byte
	if in != nil {
		var err error
		raw, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
		// Replayable body so the refresh stage can retry the request once.
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var apiErr *Error
		if ok := asError(err, &apiErr); ok {
			return apiErr
		}
		return ErrorFromTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorFromTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrorFromStatus(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if len(data) == 0 {
		return malformedError(fmt.Errorf("empty body"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformedError(err)
	}
	return nil
}
