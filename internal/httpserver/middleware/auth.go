package middleware

import (
	"context"
	"net/http"

	"hesapvitrini.com/vitrine/internal/gate"
	appsession "hesapvitrini.com/vitrine/internal/session"
)

type authContextKey string

const principalContextKey authContextKey = "auth.principal"

// Restorer resolves the visitor from their session.
type Restorer interface {
	Restore(ctx context.Context, sess *appsession.Session) gate.Principal
}

// Auth restores the signed-in visitor and attaches their principal to the
// context. It never rejects; routes decide with Require. Must run after Session.
func Auth(restorer Restorer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal gate.Principal
			if sess, ok := SessionFromContext(r.Context()); ok && restorer != nil {
				principal = restorer.Restore(r.Context(), sess)
			}
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the principal resolved by Auth.
func PrincipalFromContext(ctx context.Context) gate.Principal {
	p, _ := ctx.Value(principalContextKey).(gate.Principal)
	return p
}

// Require guards a route group with the gate. Denied visitors are redirected
// with the gate's notice flashed into their session.
func Require(req gate.Requirement) func(http.Handler) http.Handler {
	return RequireWithNotice(req, "")
}

// RequireWithNotice is Require with a route specific notice replacing the gate's default.
func RequireWithNotice(req gate.Requirement, notice string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.Evaluate(PrincipalFromContext(r.Context()), req)
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}
			text := decision.Notice
			if text != "" && notice != "" {
				text = notice
			}
			if sess, ok := SessionFromContext(r.Context()); ok && text != "" {
				sess.AddNotice(appsession.NoticeWarning, text)
			}
			Redirect(w, r, decision.Redirect)
		})
	}
}
