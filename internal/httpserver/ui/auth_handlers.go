package ui

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/auth"
	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/gate"
	custommw "hesapvitrini.com/vitrine/internal/httpserver/middleware"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/session"
	"hesapvitrini.com/vitrine/internal/views"
)

// LoginForm renders the sign-in page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "")
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, email string) {
	page := views.LoginPage{Email: email}
	page.Layout = h.layout(r, h.loadSettings(r.Context()), "title.login")
	h.renderPage(w, r, status, views.PageLogin, page)
}

// Login signs the visitor in and sends them to their landing page.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil || sess == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	user, err := h.auth.Login(r.Context(), sess, email, r.PostFormValue("password"))
	if err != nil {
		observability.FromContext(r.Context()).Info("login failed", zap.Error(err))
		sess.AddNotice(session.NoticeError, failureMessage(err, auth.MsgLoginFailed))
		h.renderLogin(w, r, http.StatusUnprocessableEntity, email)
		return
	}
	sess.AddNotice(session.NoticeSuccess, auth.MsgLoginSuccess)
	custommw.Redirect(w, r, gate.LandingPath(gate.Principal{Authenticated: true, Admin: user.IsAdmin}))
}

// RegisterForm renders the sign-up page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, "", "")
}

func (h *Handlers) renderRegister(w http.ResponseWriter, r *http.Request, status int, email, phone string) {
	page := views.RegisterPage{Email: email, Phone: phone}
	page.Layout = h.layout(r, h.loadSettings(r.Context()), "title.register")
	h.renderPage(w, r, status, views.PageRegister, page)
}

// Register creates the account and signs the visitor in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil || sess == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := auth.RegisterInput{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Phone:           strings.TrimSpace(r.PostFormValue("phone")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	user, err := h.auth.Register(r.Context(), sess, in)
	if err != nil {
		msg := failureMessage(err, auth.MsgRegisterFailed)
		if errors.Is(err, auth.ErrPasswordMismatch) {
			msg = auth.MsgPasswordMismatch
		} else {
			observability.FromContext(r.Context()).Info("register failed", zap.Error(err))
		}
		sess.AddNotice(session.NoticeError, msg)
		h.renderRegister(w, r, http.StatusUnprocessableEntity, in.Email, in.Phone)
		return
	}
	sess.AddNotice(session.NoticeSuccess, auth.MsgRegisterSuccess)
	custommw.Redirect(w, r, gate.LandingPath(gate.Principal{Authenticated: true, Admin: user.IsAdmin}))
}

// Logout drops the token and returns to the storefront.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFrom(r); sess != nil {
		h.auth.Logout(sess)
		sess.AddNotice(session.NoticeInfo, auth.MsgLoggedOut)
	}
	custommw.Redirect(w, r, gate.HomePath)
}

// TooManyAttempts answers a throttled sign-in or sign-up with the form again.
func (h *Handlers) TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	flash(r, session.NoticeWarning, noticeTooManyAttempts)
	if strings.HasPrefix(r.URL.Path, "/register") {
		h.renderRegister(w, r, http.StatusTooManyRequests, "", "")
		return
	}
	h.renderLogin(w, r, http.StatusTooManyRequests, "")
}

// failureMessage prefers the backend's own explanation.
func failureMessage(err error, fallback string) string {
	if detail := backend.Detail(err); detail != "" {
		return detail
	}
	return fallback
}
