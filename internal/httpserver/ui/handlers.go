package ui

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/auth"
	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/catalog"
	"hesapvitrini.com/vitrine/internal/format"
	custommw "hesapvitrini.com/vitrine/internal/httpserver/middleware"
	"hesapvitrini.com/vitrine/internal/i18n"
	"hesapvitrini.com/vitrine/internal/media"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/payment"
	"hesapvitrini.com/vitrine/internal/session"
	"hesapvitrini.com/vitrine/internal/views"
)

const trackVisitTimeout = 5 * time.Second

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Backend  backend.Service
	Auth     *auth.Context
	Renderer *views.Renderer
	Bundle   *i18n.Bundle
	Media    *media.Resolver
	Lists    *catalog.Registry
	// PublicURL is where this site is reachable, for share links.
	PublicURL string
	// BackendOrigin is the marketplace API origin, for the gateway callback URL.
	BackendOrigin string
}

// Handlers exposes HTTP handlers for storefront and admin pages.
type Handlers struct {
	backend       backend.Service
	auth          *auth.Context
	renderer      *views.Renderer
	bundle        *i18n.Bundle
	media         *media.Resolver
	lists         *catalog.Registry
	publicURL     string
	backendOrigin string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	service := deps.Backend
	if service == nil {
		service = backend.NewStaticService()
	}
	authCtx := deps.Auth
	if authCtx == nil {
		authCtx = auth.New(service)
	}
	resolver := deps.Media
	if resolver == nil {
		resolver, _ = media.NewResolver(deps.BackendOrigin)
	}
	lists := deps.Lists
	if lists == nil {
		lists = catalog.NewRegistry(0)
	}
	return &Handlers{
		backend:       service,
		auth:          authCtx,
		renderer:      deps.Renderer,
		bundle:        deps.Bundle,
		media:         resolver,
		lists:         lists,
		publicURL:     deps.PublicURL,
		backendOrigin: deps.BackendOrigin,
	}
}

// NotFound sends unknown paths to the storefront.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	custommw.Redirect(w, r, "/")
}

func (h *Handlers) lang(r *http.Request) string {
	if lang := custommw.LocaleFromContext(r.Context()); lang != "" {
		return lang
	}
	return h.bundle.Fallback()
}

func (h *Handlers) t(lang, key string) string {
	return h.bundle.T(lang, key)
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := custommw.SessionFromContext(r.Context())
	return sess
}

func token(r *http.Request) string {
	if sess := sessionFrom(r); sess != nil {
		return sess.AccessToken()
	}
	return ""
}

func flash(r *http.Request, kind session.NoticeKind, text string) {
	if sess := sessionFrom(r); sess != nil {
		sess.AddNotice(kind, text)
	}
}

// loadSettings returns the site settings, or zero settings when the backend
// cannot be reached.
func (h *Handlers) loadSettings(ctx context.Context) backend.Settings {
	settings, err := h.backend.Settings(ctx)
	if err != nil || settings == nil {
		if err != nil {
			observability.FromContext(ctx).Warn("load settings failed", zap.Error(err))
		}
		return backend.Settings{}
	}
	return *settings
}

func (h *Handlers) categoryNames(ctx context.Context) ([]backend.Category, map[string]string) {
	categories, err := h.backend.Categories(ctx)
	if err != nil {
		observability.FromContext(ctx).Warn("load categories failed", zap.Error(err))
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return categories, names
}

// layout builds the page chrome and drains the flashed notices.
func (h *Handlers) layout(r *http.Request, settings backend.Settings, titleKey string) views.Layout {
	lang := h.lang(r)
	siteTitle := strings.TrimSpace(settings.SiteTitle)
	if siteTitle == "" {
		siteTitle = settings.DisplayName()
	}
	title := siteTitle
	if titleKey != "" {
		title = h.t(lang, titleKey) + " | " + siteTitle
	}

	layout := views.Layout{
		Lang:      lang,
		Title:     title,
		SiteName:  settings.DisplayName(),
		Logo:      h.media.Asset(settings.SiteLogo),
		Favicon:   h.media.Asset(settings.SiteFavicon),
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		Path:      r.URL.Path,
		Languages: h.bundle.Supported(),
	}
	if sess := sessionFrom(r); sess != nil {
		if user := sess.User(); user != nil && sess.AccessToken() != "" {
			layout.User = &views.UserView{Email: user.Email, IsAdmin: user.IsAdmin}
		}
		for _, n := range sess.TakeNotices() {
			layout.Notices = append(layout.Notices, session.Notice{Kind: n.Kind, Text: h.t(lang, n.Text)})
		}
	}
	return layout
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	component, err := h.renderer.Page(page, data)
	h.serve(w, r, status, component, err)
}

func (h *Handlers) renderFragment(w http.ResponseWriter, r *http.Request, page, name string, data any) {
	component, err := h.renderer.Fragment(page, name, data)
	h.serve(w, r, http.StatusOK, component, err)
}

func (h *Handlers) serve(w http.ResponseWriter, r *http.Request, status int, component templ.Component, err error) {
	if err != nil {
		observability.FromContext(r.Context()).Error("render failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

// staleList tells htmx to leave the current list in place; a newer request
// from the same visitor already replaced it.
func staleList(w http.ResponseWriter) {
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(http.StatusNoContent)
}

// rejected signs the visitor out and sends them to the login page when the
// backend refused their token. It reports whether it handled the response.
func (h *Handlers) rejected(w http.ResponseWriter, r *http.Request, err error) bool {
	sess := sessionFrom(r)
	if sess == nil || !h.auth.Invalidate(sess, err) {
		return false
	}
	sess.AddNotice(session.NoticeWarning, noticeSessionExpired)
	custommw.Redirect(w, r, "/login")
	return true
}

func (h *Handlers) card(a backend.Account, lang string, categories map[string]string) views.AccountCard {
	m := h.media.Resolve(media.Fields{ImageFile: a.ImageFile, VideoFile: a.VideoFile, VideoURL: a.VideoURL})
	var badge string
	if m.Kind != media.KindNone {
		badge = h.t(lang, "media."+string(m.Kind))
	}
	return views.AccountCard{
		ID:           a.ID,
		Name:         a.Name,
		CategoryID:   a.CategoryID,
		CategoryName: categories[a.CategoryID],
		Price:        format.Price(a.Price, lang),
		Description:  a.Description,
		Details:      a.Details,
		Status:       string(a.Status),
		StatusLabel:  h.statusLabel(lang, string(a.Status)),
		MediaKind:    string(m.Kind),
		MediaBadge:   badge,
		MediaSource:  m.Source,
		Views:        format.Count(a.Views, lang),
		CreatedAt:    format.Date(&a.CreatedAt, lang),
		SoldAt:       format.Date(a.SoldAt, lang),
		DetailHref:   detailPath(a.ID),
		ShareLink:    payment.ShareLink(h.publicURL, a.ID),
	}
}

func (h *Handlers) cards(accounts []backend.Account, lang string, categories map[string]string) []views.AccountCard {
	out := make([]views.AccountCard, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, h.card(a, lang, categories))
	}
	return out
}

func (h *Handlers) statusLabel(lang, status string) string {
	if status == "" {
		return ""
	}
	return h.t(lang, "status."+status)
}

// fetchList loads a catalog page. htmx list swaps go through the visitor's
// ordered list so an older response never overwrites a newer one; full page
// loads fetch directly.
func (h *Handlers) fetchList(r *http.Request, scope string, q catalog.Query) (accounts []backend.Account, stale bool, err error) {
	ctx := r.Context()
	sess := sessionFrom(r)
	if !custommw.IsHTMXRequest(ctx) || sess == nil {
		accounts, err = h.backend.Accounts(ctx, token(r), q.Filter())
		return accounts, false, err
	}

	list := h.lists.List(sess.ID() + ":" + scope)
	outcome, err := list.Fetch(ctx, h.backend, sess.AccessToken(), q)
	switch outcome {
	case catalog.Stale:
		return nil, true, nil
	case catalog.Failed:
		items, _, _ := list.Snapshot()
		return items, false, err
	}
	items, _, _ := list.Snapshot()
	return items, false, nil
}

func detailPath(id string) string {
	return "/account/" + url.PathEscape(id)
}
