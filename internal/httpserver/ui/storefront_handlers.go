package ui

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/catalog"
	"hesapvitrini.com/vitrine/internal/format"
	custommw "hesapvitrini.com/vitrine/internal/httpserver/middleware"
	"hesapvitrini.com/vitrine/internal/media"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/payment"
	"hesapvitrini.com/vitrine/internal/session"
	"hesapvitrini.com/vitrine/internal/views"
)

// Home renders the storefront. htmx filter requests get only the browse region.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.lang(r)
	htmx := custommw.IsHTMXRequest(ctx)
	if !htmx {
		h.trackVisit(observability.FromContext(ctx))
	}

	browser := catalog.FromValues(catalog.Storefront, r.URL.Query())
	accounts, stale, err := h.fetchList(r, "storefront", browser.Query())
	if stale {
		staleList(w)
		return
	}
	list := views.CatalogList{Lang: lang}
	if err != nil {
		observability.FromContext(ctx).Warn("list accounts failed", zap.Error(err))
		list.Error = h.t(lang, noticeAccountsFailed)
	}

	categories, names := h.categoryNames(ctx)
	list.Accounts = h.cards(accounts, lang, names)

	page := views.HomePage{
		Category:  browser.Category(),
		Search:    browser.Draft(),
		AllHref:   browser.AllLink(),
		AllActive: browser.Category() == "",
		List:      list,
	}
	for _, c := range categories {
		page.Categories = append(page.Categories, views.CategoryLink{
			ID:     c.ID,
			Name:   c.Name,
			Href:   browser.CategoryLink(c.ID),
			Active: browser.Category() == c.ID,
		})
	}

	if htmx {
		page.Layout = views.Layout{Lang: lang}
		h.renderFragment(w, r, views.PageHome, "browse", page)
		return
	}
	page.Layout = h.layout(r, h.loadSettings(ctx), "")
	h.renderPage(w, r, http.StatusOK, views.PageHome, page)
}

// trackVisit reports a storefront visit without holding up the response.
func (h *Handlers) trackVisit(logger *zap.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), trackVisitTimeout)
		defer cancel()
		if err := h.backend.TrackVisit(ctx); err != nil {
			logger.Warn("track visit failed", zap.Error(err))
		}
	}()
}

// AccountDetail renders one catalog item with its checkout options.
func (h *Handlers) AccountDetail(w http.ResponseWriter, r *http.Request) {
	account, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	h.renderDetail(w, r, account, h.loadSettings(r.Context()), nil)
}

// loadAccount fetches the {id} item. Failures send the visitor home.
func (h *Handlers) loadAccount(w http.ResponseWriter, r *http.Request) (*backend.Account, bool) {
	id := chi.URLParam(r, "id")
	account, err := h.backend.Account(r.Context(), token(r), id)
	if err != nil || account == nil {
		if h.rejected(w, r, err) {
			return nil, false
		}
		if !errors.Is(err, backend.ErrNotFound) {
			observability.FromContext(r.Context()).Warn("load account failed", zap.String("account_id", id), zap.Error(err))
		}
		flash(r, session.NoticeError, noticeAccountNotFound)
		custommw.Redirect(w, r, "/")
		return nil, false
	}
	return account, true
}

func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, account *backend.Account, settings backend.Settings, transfer *views.TransferView) {
	ctx := r.Context()
	lang := h.lang(r)
	_, names := h.categoryNames(ctx)
	opts := payment.Resolve(settings)

	active := payment.Method(r.URL.Query().Get("tab"))
	if transfer != nil {
		active = payment.MethodBank
	}
	if !opts.Offers(active) {
		active = opts.DefaultTab
	}

	page := views.DetailPage{
		Account:       h.card(*account, lang, names),
		PaymentLayout: string(opts.Layout()),
		ActiveTab:     string(active),
		IBAN:          settings.IBAN,
		BankName:      settings.BankName,
		Holder:        payment.AccountHolder(settings),
		CheckoutBase:  detailPath(account.ID) + "/checkout/",
		Transfer:      transfer,
		Sold:          account.Status == backend.StatusSold,
	}
	for _, m := range opts.Methods() {
		page.Methods = append(page.Methods, views.PaymentMethodView{
			Method: string(m),
			Label:  h.t(lang, "payment."+string(m)),
			Active: m == active,
		})
	}
	fields := media.Fields{ImageFile: account.ImageFile, VideoFile: account.VideoFile, VideoURL: account.VideoURL}
	if preview, ok := h.media.VideoPreview(fields); ok {
		label := "preview.uploaded"
		if preview.Kind == media.KindExternalVideo {
			label = "preview.external"
		}
		page.Preview = &views.VideoPreview{Kind: string(preview.Kind), Source: preview.Source, Label: h.t(lang, label)}
	}

	page.Layout = h.layout(r, settings, "")
	page.Layout.Title = account.Name + " | " + page.Layout.SiteName
	h.renderPage(w, r, http.StatusOK, views.PageDetail, page)
}

// MyOrders lists the signed-in visitor's orders.
func (h *Handlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.lang(r)
	page := views.OrdersPage{}

	orders, err := h.backend.MyOrders(ctx, token(r))
	if err != nil {
		if h.rejected(w, r, err) {
			return
		}
		observability.FromContext(ctx).Warn("list my orders failed", zap.Error(err))
		page.Error = h.t(lang, noticeOrdersFailed)
	}
	page.Orders = h.orderRows(orders, lang)
	page.Layout = h.layout(r, h.loadSettings(ctx), "title.orders")
	h.renderPage(w, r, http.StatusOK, views.PageOrders, page)
}

func (h *Handlers) orderRows(orders []backend.Order, lang string) []views.OrderRow {
	rows := make([]views.OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, views.OrderRow{
			ID:          o.ID,
			AccountID:   o.AccountID,
			AccountName: o.AccountName,
			UserEmail:   o.UserEmail,
			UserPhone:   o.UserPhone,
			Amount:      format.Price(o.Amount, lang),
			Status:      o.Status,
			Method:      o.PaymentMethod,
			CreatedAt:   format.Date(&o.CreatedAt, lang),
		})
	}
	return rows
}
