// Package auth owns the sign-in lifecycle: it exchanges credentials for a
// backend token, keeps the token and user in the browser session, and
// re-confirms the user with the backend from time to time.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/gate"
	"hesapvitrini.com/vitrine/internal/session"
)

const defaultRecheckInterval = 5 * time.Minute

// Messages shown around sign-in.
const (
	MsgLoginSuccess     = "Başarıyla giriş yapıldı!"
	MsgLoginFailed      = "Giriş başarısız!"
	MsgRegisterSuccess  = "Kayıt başarılı!"
	MsgRegisterFailed   = "Kayıt başarısız!"
	MsgPasswordMismatch = "Şifreler eşleşmiyor!"
	MsgLoggedOut        = "Çıkış yapıldı"
)

// ErrPasswordMismatch is returned when the confirmation differs from the password.
var ErrPasswordMismatch = errors.New("auth: passwords do not match")

// Backend is the subset of the marketplace API used for sign-in.
type Backend interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.AuthResult, error)
	Me(ctx context.Context, token string) (*backend.User, error)
}

// Option customises a Context.
type Option func(*Context)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRecheckInterval sets how long a confirmed user is trusted before the
// backend is asked again.
func WithRecheckInterval(d time.Duration) Option {
	return func(c *Context) {
		if d > 0 {
			c.recheck = d
		}
	}
}

// WithLogger attaches a logger for background failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Context is the process-wide auth state holder. The per-visitor state lives
// in the session passed to each call.
type Context struct {
	backend Backend
	now     func() time.Time
	recheck time.Duration
	logger  *zap.Logger
}

// New constructs a Context.
func New(b Backend, opts ...Option) *Context {
	c := &Context{
		backend: b,
		now:     time.Now,
		recheck: defaultRecheckInterval,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token and stores it in sess.
func (c *Context) Login(ctx context.Context, sess *session.Session, email, password string) (*backend.User, error) {
	res, err := c.backend.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	c.signIn(sess, res)
	return &res.User, nil
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Register creates the user and signs them in. A confirmation mismatch is
// rejected before any backend call.
func (c *Context) Register(ctx context.Context, sess *session.Session, in RegisterInput) (*backend.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	res, err := c.backend.Register(ctx, backend.RegisterRequest{
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Password: in.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: register: %w", err)
	}
	c.signIn(sess, res)
	return &res.User, nil
}

// Logout forgets the token. The backend is not told; tokens are stateless.
func (c *Context) Logout(sess *session.Session) {
	sess.SignOut()
}

// Restore returns the visitor's principal. Expired tokens are dropped
// locally; otherwise the stored user is re-confirmed through the backend once
// the recheck interval has passed, and a rejected token signs the visitor out.
// Transport failures keep the stored user.
func (c *Context) Restore(ctx context.Context, sess *session.Session) gate.Principal {
	token := sess.AccessToken()
	if token == "" {
		return gate.Principal{}
	}
	now := c.now()
	if sess.TokenExpired(now) {
		sess.SignOut()
		return gate.Principal{}
	}
	if sess.User() == nil || now.Sub(sess.CheckedAt()) >= c.recheck {
		user, err := c.backend.Me(ctx, token)
		switch {
		case err == nil:
			sess.SetUser(sessionUser(*user), now)
		case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrForbidden):
			sess.SignOut()
			return gate.Principal{}
		default:
			c.logger.Warn("auth: restore user", zap.Error(err))
			if sess.User() == nil {
				return gate.Principal{}
			}
		}
	}
	return PrincipalOf(sess)
}

// Invalidate signs the visitor out after the backend rejected their token
// during some other call.
func (c *Context) Invalidate(sess *session.Session, err error) bool {
	if errors.Is(err, backend.ErrUnauthorized) {
		sess.SignOut()
		return true
	}
	return false
}

// PrincipalOf reads the principal stored in sess without contacting the backend.
func PrincipalOf(sess *session.Session) gate.Principal {
	if sess == nil || sess.AccessToken() == "" {
		return gate.Principal{}
	}
	user := sess.User()
	if user == nil {
		return gate.Principal{}
	}
	return gate.Principal{Authenticated: true, Admin: user.IsAdmin}
}

func (c *Context) signIn(sess *session.Session, res *backend.AuthResult) {
	sess.SignIn(res.AccessToken, sessionUser(res.User), c.now())
}

func sessionUser(u backend.User) session.User {
	return session.User{ID: u.ID, Email: u.Email, Phone: u.Phone, IsAdmin: u.IsAdmin}
}
