package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPublicRoutes lists endpoints reachable without a session. Requests
// to these paths never trigger the refresh protocol, even on a 401.
var DefaultPublicRoutes = []string{
	"/auth/login",
	"/auth/account-activation",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/auth/refresh-token",
}

const refreshPath = "/auth/refresh-token"

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.example.com".
	BaseURL string
	// Storage backs the session. Required.
	Storage Storage
	// HTTPClient overrides the transport used for intercepted calls.
	HTTPClient *http.Client
	// PublicRoutes overrides DefaultPublicRoutes.
	PublicRoutes []string
	// OnUnauthenticated runs at most once per session when a refresh fails,
	// after tokens are cleared. The UI uses it to redirect to login.
	OnUnauthenticated func()
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Client issues authenticated API calls and transparently recovers from
// access-token expiry exactly once per request. Concurrent expiries share a
// single in-flight refresh.
type Client struct {
	baseURL string
	httpc   *http.Client
	bare    *http.Client
	session *Session
	public  []string
	logger  *zap.Logger

	refreshGroup      singleflight.Group
	onUnauthenticated func()
	loggedOut         atomic.Bool
}

// New builds a Client and loads any persisted session.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: BaseURL required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("client: Storage required")
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	public := cfg.PublicRoutes
	if public == nil {
		public = DefaultPublicRoutes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   httpc,
		// Refresh runs on a bare transport so it can never be intercepted
		// back into the refresh protocol.
		bare:              &http.Client{Timeout: httpc.Timeout},
		session:           NewSession(cfg.Storage),
		public:            public,
		logger:            logger,
		onUnauthenticated: cfg.OnUnauthenticated,
	}, nil
}

// Session exposes the token store.
func (c *Client) Session() *Session {
	return c.session
}

// Do issues a request and decodes a 2xx JSON body into out (when non-nil).
// A 401 on a private route triggers one refresh-and-retry cycle; the retried
// request carries the token minted by the refresh, not the original one.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = raw
	}

	token := c.session.AccessToken()
	if c.isPublic(path) {
		// Public endpoints never see a bearer token; a stale one must not
		// influence login or activation.
		token = ""
	}

	resp, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && !c.isPublic(path) {
		drain(resp)

		token, err := c.refresh(ctx)
		if err != nil {
			// The original 401 is superseded by the refresh failure.
			return err
		}

		resp, err = c.send(ctx, method, path, payload, token)
		if err != nil {
			return &NetworkError{Err: err}
		}
		// A second 401 falls through as an ordinary HTTP error: one retry only.
	}

	return c.consume(resp, path, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpc.Do(req)
}

// refresh coalesces concurrent callers onto one refresh round trip. Every
// waiter receives the same newly minted access token or the same failure.
func (c *Client) refresh(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		// An abandoned request is not an invalid session: cancellation
		// rejects the waiter but keeps the tokens.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", &RefreshError{Err: err}
		}
		c.forceLogout()
		return "", &RefreshError{Err: err}
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return "", errors.New("no refresh token held")
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.bare.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", httpError(resp)
	}

	var envelope struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &MalformedResponseError{Path: refreshPath, Detail: err.Error()}
	}
	if envelope.Data.AccessToken == "" {
		return "", &MalformedResponseError{Path: refreshPath, Detail: "missing data.accessToken"}
	}

	// Persist before returning so the retried request reads the new token.
	c.session.SetTokens(envelope.Data.AccessToken, envelope.Data.RefreshToken)
	return envelope.Data.AccessToken, nil
}

// forceLogout clears the session and fires the unauthenticated callback at
// most once, so concurrent refresh failures cannot cause a redirect storm.
func (c *Client) forceLogout() {
	c.session.Clear()
	if c.loggedOut.CompareAndSwap(false, true) {
		c.logger.Info("session expired; forcing logout")
		if c.onUnauthenticated != nil {
			c.onUnauthenticated()
		}
	}
}

// resetLogoutGuard re-arms the unauthenticated callback after a fresh login.
func (c *Client) resetLogoutGuard() {
	c.loggedOut.Store(false)
}

func (c *Client) consume(resp *http.Response, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &MalformedResponseError{Path: path, Detail: err.Error()}
	}
	return nil
}

func (c *Client) isPublic(path string) bool {
	for _, route := range c.public {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

// httpError extracts the server message, falling back to the status text and
// then a generic string.
func httpError(resp *http.Response) *HTTPError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		message = body.Message
		if message == "" {
			message = body.Error.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if message == "" {
		message = "request failed"
	}
	return &HTTPError{Status: resp.StatusCode, Message: message}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
