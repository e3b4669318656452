package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"skysms.org/internal/prefs"
)

// Preference keys within their namespaces.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
	keyUserName     = "name"
	keyUserEmail    = "email"
)

// User is the signed-in account as the client knows it.
type User struct {
	ID    string
	Name  string
	Email string
}

// Session owns the persisted token pair and user display fields. It is an
// explicitly constructed service injected where needed; there is no package
// level session state. It also satisfies the api package's TokenSource.
type Session struct {
	store *prefs.Store
}

// NewSession wraps the secure preference store.
func NewSession(store *prefs.Store) *Session {
	return &Session{store: store}
}

// AccessToken returns the stored access token, or "".
func (s *Session) AccessToken() string {
	v, _ := s.store.Get(prefs.NamespaceAuth, keyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, or "".
func (s *Session) RefreshToken() string {
	v, _ := s.store.Get(prefs.NamespaceAuth, keyRefreshToken)
	return v
}

// SaveTokens persists a new token pair. Called by the login flows and by the
// transparent refresh stage.
func (s *Session) SaveTokens(access, refresh string) error {
	if err := s.store.Set(prefs.NamespaceAuth, keyAccessToken, access); err != nil {
		return err
	}
	return s.store.Set(prefs.NamespaceAuth, keyRefreshToken, refresh)
}

// SaveUser persists the user display fields alongside the tokens.
func (s *Session) SaveUser(u User) error {
	if err := s.store.Set(prefs.NamespaceUser, keyUserID, u.ID); err != nil {
		return err
	}
	if err := s.store.Set(prefs.NamespaceUser, keyUserName, u.Name); err != nil {
		return err
	}
	return s.store.Set(prefs.NamespaceUser, keyUserEmail, u.Email)
}

// User returns the persisted user fields, if any.
func (s *Session) User() (User, bool) {
	id, ok := s.store.Get(prefs.NamespaceUser, keyUserID)
	if !ok {
		return User{}, false
	}
	name, _ := s.store.Get(prefs.NamespaceUser, keyUserName)
	email, _ := s.store.Get(prefs.NamespaceUser, keyUserEmail)
	return User{ID: id, Name: name, Email: email}, true
}

// Authenticated reports whether a token pair is present. It does not verify
// the token; an expired one is refreshed transparently on first use.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// TokenExpiry reads the exp claim from the stored access token without
// verifying the signature (the client holds no backend key). Zero time when
// no token is stored or the claim is absent.
func (s *Session) TokenExpiry() time.Time {
	raw := s.AccessToken()
	if raw == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Clear drops tokens and user fields. Used on logout and on irrecoverable
// refresh failure.
func (s *Session) Clear() error {
	if err := s.store.ClearNamespace(prefs.NamespaceAuth); err != nil {
		return err
	}
	return s.store.ClearNamespace(prefs.NamespaceUser)
}
