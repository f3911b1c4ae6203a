package middleware

import (
	"context"
	"net/http"
	"time"
)

type localeContextKey struct{}

// LocaleCookie remembers an explicit language choice.
const LocaleCookie = "vitrine_lang"

// LanguageResolver picks supported languages.
type LanguageResolver interface {
	Resolve(acceptLanguage string) string
	Normalize(lang string) string
	Fallback() string
}

// Locale chooses the response language: ?lang= (remembered in a cookie), then
// the cookie, then Accept-Language.
func Locale(resolver LanguageResolver, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if q := resolver.Normalize(r.URL.Query().Get("lang")); q != "" {
				lang = q
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(LocaleCookie); err == nil {
				lang = resolver.Normalize(c.Value)
			}
			if lang == "" {
				lang = resolver.Resolve(r.Header.Get("Accept-Language"))
			}
			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")

			ctx := context.WithValue(r.Context(), localeContextKey{}, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the resolved language, or "" outside Locale.
func LocaleFromContext(ctx context.Context) string {
	lang, _ := ctx.Value(localeContextKey{}).(string)
	return lang
}
