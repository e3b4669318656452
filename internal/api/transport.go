package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"skysms.org/internal/ids"
	"skysms.org/internal/obs"
)

const (
	authHeader      = "Authorization"
	requestIDHeader = "X-Request-Id"
	bearer          = "Bearer "
)

// Endpoints that are served without a session token.
var publicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
	"/auth/refresh",
	"/auth/oauth/login",
	"/auth/google",
}

// Endpoints whose own 401 must never trigger a refresh, to avoid recursion.
var refreshExemptPaths = []string{
	"/auth/login",
	"/auth/refresh",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func isRefreshExempt(path string) bool {
	for _, p := range refreshExemptPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// TokenSource is the session state the transport reads and writes. The auth
// package's session service implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SaveTokens(access, refresh string) error
	Clear() error
}

// observeTransport tags each physical request with a correlation id and
// records structured logs plus client metrics.
type observeTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

func (t *observeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := ids.New()
	req.Header.Set(requestIDHeader, id)

	done := obs.RequestStarted(req.Method, req.URL.Path)
	t.log.Debug("request",
		zap.String("id", id),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		done(0)
		t.log.Debug("request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	done(resp.StatusCode)
	t.log.Debug("response",
		zap.String("id", id),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// throttleTransport paces outbound requests so a misbehaving loop cannot
// hammer the backend.
type throttleTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

// refreshFunc exchanges a refresh token for a new token pair using a clean
// client with no middleware.
type refreshFunc func(ctx context.Context, refreshToken string) (AuthResponse, error)

// authTransport injects the bearer token and transparently refreshes it on
// 401. Refreshes are serialized through a singleflight group: requests that
// race on the same stale token share one refresh call.
type authTransport struct {
	next    http.RoundTripper
	tokens  TokenSource
	refresh refreshFunc
	group   singleflight.Group
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isPublicPath(req.URL.Path) {
		return t.next.RoundTrip(req)
	}

	sent := t.tokens.AccessToken()
	resp, err := t.roundTripWithToken(req, sent)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRefreshExempt(req.URL.Path) {
		return resp, nil
	}

	// Release the 401 body before retrying.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	token, rerr := t.refreshedToken(req.Context(), sent)
	if rerr != nil {
		return nil, rerr
	}
	return t.roundTripWithToken(req, token)
}

func (t *authTransport) roundTripWithToken(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	if token != "" {
		clone.Header.Set(authHeader, bearer+token)
	}
	return t.next.RoundTrip(clone)
}

// refreshedToken returns a token that is known to be newer than the one the
// failed request carried. Concurrent callers wait on a single refresh.
func (t *authTransport) refreshedToken(ctx context.Context, staleToken string) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		// Another request may have refreshed while this one waited.
		if current := t.tokens.AccessToken(); current != "" && current != staleToken {
			return current, nil
		}

		refresh := t.tokens.RefreshToken()
		if refresh == "" {
			_ = t.tokens.Clear()
			return nil, sessionInvalidError(nil)
		}
		auth, err := t.refresh(ctx, refresh)
		if err != nil {
			_ = t.tokens.Clear()
			return nil, sessionInvalidError(err)
		}
		if err := t.tokens.SaveTokens(auth.Token, auth.RefreshToken); err != nil {
			return nil, err
		}
		return auth.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
