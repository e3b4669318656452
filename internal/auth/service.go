// Package auth drives the sign-in lifecycle: form validation, the
// login/register/OAuth/forgot-password flows, and the persisted session.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"skysms.org/internal/api"
)

// Phase is the discriminant of the auth state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
	PhaseForgotPasswordSent
)

// State is the tagged auth flow state. User is set only for PhaseSuccess;
// Message only for PhaseError and PhaseForgotPasswordSent.
type State struct {
	Phase   Phase
	User    User
	Message string
}

// Backend is the slice of the API client the auth flows need. Narrow on
// purpose so tests can fake it.
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
	OAuthLogin(ctx context.Context, req api.OAuthLoginRequest) (api.AuthResponse, error)
	GoogleSignIn(ctx context.Context, req api.GoogleSignInRequest) (api.AuthResponse, error)
	ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (api.MessageResponse, error)
	CurrentUser(ctx context.Context) (api.User, error)
	Logout(ctx context.Context) error
}

// Service runs the auth flows. Each flow moves Idle -> Loading ->
// (Success | Error | ForgotPasswordSent); validation failures block before
// Loading.
type Service struct {
	backend Backend
	session *Session
	log     *zap.Logger

	mu    sync.Mutex
	state State
}

// NewService wires the flows to a backend and session.
func NewService(backend Backend, session *Session, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, session: session, log: log}
}

// State returns the current flow state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns the machine to Idle, e.g. after the UI consumed an error.
func (s *Service) Reset() {
	s.setState(State{Phase: PhaseIdle})
}

// Session exposes the underlying session service.
func (s *Service) Session() *Session { return s.session }

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Login signs in with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if errs := ValidateLogin(email, password); errs != nil {
		return User{}, errs
	}
	return s.runAuthFlow(ctx, "login", func() (api.AuthResponse, error) {
		return s.backend.Login(ctx, api.LoginRequest{Email: email, Password: password})
	})
}

// Register creates an account and signs in.
func (s *Service) Register(ctx context.Context, name, email, password, confirm string) (User, error) {
	if errs := ValidateRegistration(name, email, password, confirm); errs != nil {
		return User{}, errs
	}
	return s.runAuthFlow(ctx, "register", func() (api.AuthResponse, error) {
		return s.backend.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
	})
}

// OAuthLogin exchanges a provider ID token for a session. Obtaining the ID
// token is the platform SDK's job and stays outside this module.
func (s *Service) OAuthLogin(ctx context.Context, idToken string) (User, error) {
	return s.runAuthFlow(ctx, "oauth", func() (api.AuthResponse, error) {
		return s.backend.OAuthLogin(ctx, api.OAuthLoginRequest{IDToken: idToken, Provider: "google"})
	})
}

// GoogleSignIn sends a Google ID token plus profile hints to the dedicated
// endpoint.
func (s *Service) GoogleSignIn(ctx context.Context, idToken, email, name, avatarURL string) (User, error) {
	return s.runAuthFlow(ctx, "google", func() (api.AuthResponse, error) {
		return s.backend.GoogleSignIn(ctx, api.GoogleSignInRequest{
			IDToken:   idToken,
			Email:     email,
			Name:      name,
			AvatarURL: avatarURL,
		})
	})
}

func (s *Service) runAuthFlow(ctx context.Context, flow string, call func() (api.AuthResponse, error)) (User, error) {
	s.setState(State{Phase: PhaseLoading})

	resp, err := call()
	if err != nil {
		msg := userMessage(err)
		s.setState(State{Phase: PhaseError, Message: msg})
		s.log.Warn("auth flow failed", zap.String("flow", flow), zap.Error(err))
		return User{}, err
	}

	u := User{ID: resp.User.ID, Name: resp.User.Name, Email: resp.User.Email}
	if err := s.session.SaveTokens(resp.Token, resp.RefreshToken); err != nil {
		s.setState(State{Phase: PhaseError, Message: err.Error()})
		return User{}, err
	}
	if err := s.session.SaveUser(u); err != nil {
		s.setState(State{Phase: PhaseError, Message: err.Error()})
		return User{}, err
	}

	s.setState(State{Phase: PhaseSuccess, User: u})
	s.log.Info("signed in", zap.String("flow", flow), zap.String("user", u.ID))
	return u, nil
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if errs := ValidateForgotPassword(email); errs != nil {
		return "", errs
	}
	s.setState(State{Phase: PhaseLoading})

	resp, err := s.backend.ForgotPassword(ctx, api.ForgotPasswordRequest{Email: email})
	if err != nil {
		s.setState(State{Phase: PhaseError, Message: userMessage(err)})
		return "", err
	}
	s.setState(State{Phase: PhaseForgotPasswordSent, Message: resp.Message})
	return resp.Message, nil
}

// CurrentUser fetches the profile for the active session.
func (s *Service) CurrentUser(ctx context.Context) (User, error) {
	if !s.session.Authenticated() {
		return User{}, ErrNotAuthenticated
	}
	u, err := s.backend.CurrentUser(ctx)
	if err != nil {
		return User{}, err
	}
	return User{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

// Logout tells the backend, then clears local state regardless of the
// call's outcome. The device must forget the session either way.
func (s *Service) Logout(ctx context.Context) error {
	var apiErr error
	if s.session.Authenticated() {
		apiErr = s.backend.Logout(ctx)
	}
	if err := s.session.Clear(); err != nil {
		return err
	}
	s.setState(State{Phase: PhaseIdle})
	if apiErr != nil {
		s.log.Warn("logout call failed, local session cleared", zap.Error(apiErr))
	}
	return nil
}

// userMessage extracts the user-facing message from a taxonomy error.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
