package ui

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/catalog"
	"hesapvitrini.com/vitrine/internal/format"
	"hesapvitrini.com/vitrine/internal/forms"
	custommw "hesapvitrini.com/vitrine/internal/httpserver/middleware"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/payment"
	"hesapvitrini.com/vitrine/internal/session"
	"hesapvitrini.com/vitrine/internal/views"
)

const (
	sectionDashboard  = "dashboard"
	sectionAccounts   = "accounts"
	sectionCategories = "categories"
	sectionOrders     = "orders"
	sectionSettings   = "settings"

	adminAccountsPath   = "/admin/accounts"
	adminCategoriesPath = "/admin/categories"
	adminSettingsPath   = "/admin/settings"

	multipartMemory = 8 << 20
)

// Dashboard shows the aggregate figures and the most viewed items.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.lang(r)
	page := views.DashboardPage{
		Section:     sectionDashboard,
		CallbackURL: payment.CallbackURL(h.backendOrigin),
	}

	stats, err := h.backend.Analytics(ctx, token(r))
	if err != nil {
		if h.rejected(w, r, err) {
			return
		}
		observability.FromContext(ctx).Warn("load analytics failed", zap.Error(err))
		page.Error = h.t(lang, noticeAnalyticsFailed)
		stats = &backend.Analytics{}
	}
	for _, s := range []struct {
		key   string
		value int
	}{
		{"total_accounts", stats.TotalAccounts},
		{"available_accounts", stats.AvailableAccounts},
		{"sold_accounts", stats.SoldAccounts},
		{"pending_accounts", stats.PendingAccounts},
		{"total_categories", stats.TotalCategories},
		{"total_users", stats.TotalUsers},
		{"visits", stats.VisitsLast30Days},
	} {
		page.Stats = append(page.Stats, views.StatCard{Key: s.key, Label: h.t(lang, "stats."+s.key), Value: format.Count(s.value, lang)})
	}
	_, names := h.categoryNames(ctx)
	page.MostViewed = h.cards(stats.MostViewedAccounts, lang, names)

	page.Layout = h.layout(r, h.loadSettings(ctx), "title.admin")
	h.renderPage(w, r, http.StatusOK, views.PageAdminDashboard, page)
}

// Accounts lists catalog items for the admin. ?edit=<id> opens the item in the form.
func (h *Handlers) Accounts(w http.ResponseWriter, r *http.Request) {
	buf := &forms.AccountBuffer{}
	if id := strings.TrimSpace(r.URL.Query().Get("edit")); id != "" {
		account, err := h.backend.Account(r.Context(), token(r), id)
		if err != nil {
			if h.rejected(w, r, err) {
				return
			}
			flash(r, session.NoticeError, noticeAccountNotFound)
			custommw.Redirect(w, r, adminAccountsPath)
			return
		}
		buf = forms.EditBuffer(*account)
	}
	h.renderAccounts(w, r, http.StatusOK, buf, "")
}

func (h *Handlers) renderAccounts(w http.ResponseWriter, r *http.Request, status int, buf *forms.AccountBuffer, formErr string) {
	ctx := r.Context()
	lang := h.lang(r)
	htmx := custommw.IsHTMXRequest(ctx) && r.Method == http.MethodGet

	browser := catalog.FromValues(catalog.Admin, r.URL.Query())
	accounts, stale, err := h.fetchList(r, "admin", browser.Query())
	if stale {
		staleList(w)
		return
	}
	if h.rejected(w, r, err) {
		return
	}
	categories, names := h.categoryNames(ctx)

	list := views.AdminAccountList{
		Lang:      lang,
		CSRFToken: custommw.CSRFTokenFromContext(ctx),
		Accounts:  h.cards(accounts, lang, names),
		EditBase:  adminAccountsPath + "?edit=",
		Confirm:   h.t(lang, forms.ConfirmDeleteAccount),
	}
	if err != nil {
		observability.FromContext(ctx).Warn("list admin accounts failed", zap.Error(err))
		list.Error = h.t(lang, noticeAccountsFailed)
	}

	page := views.AdminAccountsPage{
		Section:   sectionAccounts,
		AllHref:   browser.AllLink(),
		AllActive: browser.Category() == "",
		Category:  browser.Category(),
		Status:    string(browser.Status()),
		Search:    browser.Draft(),
		List:      list,
		Form:      h.accountForm(buf, lang, formErr),
	}
	for _, c := range categories {
		page.Categories = append(page.Categories, views.CategoryLink{
			ID: c.ID, Name: c.Name, Href: browser.CategoryLink(c.ID), Active: browser.Category() == c.ID,
		})
	}
	for _, s := range catalog.StatusFilters() {
		page.Statuses = append(page.Statuses, views.FilterLink{
			Value:  string(s),
			Label:  h.statusLabel(lang, string(s)),
			Href:   browser.StatusLink(s),
			Active: browser.Status() == s,
		})
	}

	if htmx {
		page.Layout = views.Layout{Lang: lang, CSRFToken: list.CSRFToken}
		h.renderFragment(w, r, views.PageAdminAccounts, "admin_browse", page)
		return
	}
	page.Layout = h.layout(r, h.loadSettings(ctx), "title.admin")
	h.renderPage(w, r, status, views.PageAdminAccounts, page)
}

func (h *Handlers) accountForm(buf *forms.AccountBuffer, lang, formErr string) views.AccountForm {
	form := views.AccountForm{
		ID:          buf.ID,
		CategoryID:  buf.CategoryID,
		Name:        buf.Name,
		Price:       buf.Price,
		Description: buf.Description,
		Details:     buf.Details,
		VideoURL:    buf.VideoURL,
		ImageFile:   buf.ImageFile,
		VideoFile:   buf.VideoFile,
		ImageURL:    h.media.Asset(buf.ImageFile),
		VideoSrc:    h.media.Asset(buf.VideoFile),
		Status:      string(buf.Status),
		Error:       formErr,
		Action:      adminAccountsPath,
		Editing:     buf.Editing(),
	}
	if buf.Editing() {
		form.Action = adminAccountsPath + "/" + buf.ID
		for _, s := range backend.Statuses() {
			form.Statuses = append(form.Statuses, views.FilterLink{
				Value:  string(s),
				Label:  h.statusLabel(lang, string(s)),
				Active: s == buf.Status,
			})
		}
	}
	return form
}

// CreateAccount commits the new-item form: uploads first, then the write.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	buf := &forms.AccountBuffer{CategoryID: strings.TrimSpace(r.PostFormValue("category_id"))}
	applyAccountFields(buf, r)
	if err := selectUploads(buf, r); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.commitAccount(w, r, buf, noticeAccountAdded, noticeAccountAddFailed)
}

// UpdateAccount applies the edit form on top of the stored item. The category
// cannot change.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	account, err := h.backend.Account(r.Context(), token(r), id)
	if err != nil {
		if h.rejected(w, r, err) {
			return
		}
		flash(r, session.NoticeError, noticeAccountNotFound)
		custommw.Redirect(w, r, adminAccountsPath)
		return
	}
	buf := forms.EditBuffer(*account)
	applyAccountFields(buf, r)
	if s, ok := backend.ParseStatus(r.PostFormValue("status")); ok {
		buf.Status = s
	}
	var removed []string
	if r.PostFormValue("remove_image") == "true" {
		buf.RemoveImage()
		removed = append(removed, noticeImageRemoved)
	}
	if r.PostFormValue("remove_video") == "true" {
		buf.RemoveVideo()
		removed = append(removed, noticeVideoRemoved)
	}
	if err := selectUploads(buf, r); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.commitAccount(w, r, buf, noticeAccountUpdated, noticeAccountUpdFailed, removed...)
}

// commitAccount runs the buffer commit. infos are flashed only when it succeeds.
func (h *Handlers) commitAccount(w http.ResponseWriter, r *http.Request, buf *forms.AccountBuffer, okNotice, failNotice string, infos ...string) {
	ctx := r.Context()
	res := buf.Commit(ctx, h.backend, token(r))
	if res.OK {
		for _, info := range infos {
			flash(r, session.NoticeInfo, info)
		}
		flash(r, session.NoticeSuccess, okNotice)
		custommw.Redirect(w, r, adminAccountsPath)
		return
	}
	if h.rejected(w, r, res.Err) {
		return
	}

	lang := h.lang(r)
	if verr, ok := forms.AsValidationError(res.Err); ok {
		h.renderAccounts(w, r, http.StatusUnprocessableEntity, buf, h.t(lang, verr.Message))
		return
	}
	observability.FromContext(ctx).Warn("save account failed",
		zap.String("stage", string(res.Stage)), zap.String("account_id", buf.ID), zap.Error(res.Err))
	msg := h.t(lang, failNotice)
	if detail := backend.Detail(res.Err); detail != "" {
		msg = fmt.Sprintf("%s %s", msg, detail)
	}
	h.renderAccounts(w, r, http.StatusUnprocessableEntity, buf, msg)
}

// DeleteAccount removes one item.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteAccount(r.Context(), token(r), id); err != nil {
		if h.rejected(w, r, err) {
			return
		}
		observability.FromContext(r.Context()).Warn("delete account failed", zap.String("account_id", id), zap.Error(err))
		flash(r, session.NoticeError, noticeAccountDelFailed)
	} else {
		flash(r, session.NoticeSuccess, noticeAccountDeleted)
	}
	custommw.Redirect(w, r, adminAccountsPath)
}

func applyAccountFields(buf *forms.AccountBuffer, r *http.Request) {
	buf.Name = r.PostFormValue("name")
	buf.Price = strings.TrimSpace(r.PostFormValue("price"))
	buf.Description = r.PostFormValue("description")
	buf.Details = r.PostFormValue("details")
	buf.VideoURL = strings.TrimSpace(r.PostFormValue("video_url"))
}

func selectUploads(buf *forms.AccountBuffer, r *http.Request) error {
	video, err := formFile(r, "video")
	if err != nil {
		return err
	}
	if !video.Empty() {
		buf.SelectVideo(video)
	}
	image, err := formFile(r, "image")
	if err != nil {
		return err
	}
	if !image.Empty() {
		buf.SelectImage(image)
	}
	return nil
}

// formFile reads one selected file. No selection yields an empty File.
func formFile(r *http.Request, field string) (backend.File, error) {
	if r.MultipartForm == nil {
		return backend.File{}, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return backend.File{}, nil
	}
	if err != nil {
		return backend.File{}, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return backend.File{}, err
	}
	return backend.File{Filename: header.Filename, ContentType: header.Header.Get("Content-Type"), Data: data}, nil
}

// Categories lists categories with the create form.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	h.renderCategories(w, r, http.StatusOK, &forms.CategoryBuffer{}, "")
}

func (h *Handlers) renderCategories(w http.ResponseWriter, r *http.Request, status int, buf *forms.CategoryBuffer, formErr string) {
	ctx := r.Context()
	lang := h.lang(r)
	categories, _ := h.categoryNames(ctx)
	page := views.AdminCategoriesPage{
		Section:     sectionCategories,
		Name:        buf.Name,
		Description: buf.Description,
		Error:       formErr,
		Confirm:     h.t(lang, forms.ConfirmDeleteCategory),
	}
	for _, c := range categories {
		page.Categories = append(page.Categories, views.CategoryRow{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			CreatedAt:   format.Date(&c.CreatedAt, lang),
		})
	}
	page.Layout = h.layout(r, h.loadSettings(ctx), "title.admin")
	h.renderPage(w, r, status, views.PageAdminCategories, page)
}

// CreateCategory commits the new-category form.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	buf := &forms.CategoryBuffer{Name: r.PostFormValue("name"), Description: r.PostFormValue("description")}
	res := buf.Commit(r.Context(), h.backend, token(r))
	if res.OK {
		flash(r, session.NoticeSuccess, noticeCategoryAdded)
		custommw.Redirect(w, r, adminCategoriesPath)
		return
	}
	if h.rejected(w, r, res.Err) {
		return
	}
	lang := h.lang(r)
	if verr, ok := forms.AsValidationError(res.Err); ok {
		h.renderCategories(w, r, http.StatusUnprocessableEntity, buf, h.t(lang, verr.Message))
		return
	}
	observability.FromContext(r.Context()).Warn("create category failed", zap.Error(res.Err))
	h.renderCategories(w, r, http.StatusUnprocessableEntity, buf, h.t(lang, noticeCategoryAddFailed))
}

// DeleteCategory removes a category; the backend removes its items too.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteCategory(r.Context(), token(r), id); err != nil {
		if h.rejected(w, r, err) {
			return
		}
		observability.FromContext(r.Context()).Warn("delete category failed", zap.String("category_id", id), zap.Error(err))
		flash(r, session.NoticeError, noticeCategoryDelFailed)
	} else {
		flash(r, session.NoticeSuccess, noticeCategoryDeleted)
	}
	custommw.Redirect(w, r, adminCategoriesPath)
}

// Settings renders the settings form.
func (h *Handlers) Settings(w http.ResponseWriter, r *http.Request) {
	settings := h.loadSettings(r.Context())
	h.renderSettings(w, r, http.StatusOK, settings, forms.SettingsFrom(settings), "")
}

func (h *Handlers) renderSettings(w http.ResponseWriter, r *http.Request, status int, settings backend.Settings, buf *forms.SettingsBuffer, formErr string) {
	in := buf.SettingsUpdate
	page := views.AdminSettingsPage{
		Section:     sectionSettings,
		CallbackURL: payment.CallbackURL(h.backendOrigin),
		Error:       formErr,
		Form: views.SettingsForm{
			SiteName:            in.SiteName,
			SiteTitle:           in.SiteTitle,
			SiteLogo:            in.SiteLogo,
			SiteFavicon:         in.SiteFavicon,
			WhatsAppNumber:      in.WhatsAppNumber,
			IBAN:                in.IBAN,
			BankName:            in.BankName,
			IBANName:            in.IBANName,
			IBANSurname:         in.IBANSurname,
			ShopierAPIKey:       in.ShopierAPIKey,
			ShopierAPISecret:    in.ShopierAPISecret,
			ShopierWebsiteIndex: in.ShopierWebsiteIndex,
			EnableIBANPayment:   in.EnableIBANPayment,
			EnableCardPayment:   in.EnableCardPayment,
		},
	}
	page.Layout = h.layout(r, settings, "title.admin")
	h.renderPage(w, r, status, views.PageAdminSettings, page)
}

// UpdateSettings writes every settings field, both payment toggles included.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	buf := &forms.SettingsBuffer{SettingsUpdate: backend.SettingsUpdate{
		SiteName:            field("site_name"),
		SiteTitle:           field("site_title"),
		SiteLogo:            field("site_logo"),
		SiteFavicon:         field("site_favicon"),
		WhatsAppNumber:      field("whatsapp_number"),
		IBAN:                field("iban"),
		BankName:            field("bank_name"),
		IBANName:            field("iban_name"),
		IBANSurname:         field("iban_surname"),
		ShopierAPIKey:       field("shopier_api_key"),
		ShopierAPISecret:    field("shopier_api_secret"),
		ShopierWebsiteIndex: field("shopier_website_index"),
		EnableIBANPayment:   field("enable_iban_payment") == "true",
		EnableCardPayment:   field("enable_card_payment") == "true",
	}}
	res := buf.Commit(r.Context(), h.backend, token(r))
	if res.OK {
		flash(r, session.NoticeSuccess, noticeSettingsSaved)
		custommw.Redirect(w, r, adminSettingsPath)
		return
	}
	if h.rejected(w, r, res.Err) {
		return
	}
	observability.FromContext(r.Context()).Warn("update settings failed", zap.Error(res.Err))
	h.renderSettings(w, r, http.StatusUnprocessableEntity, h.loadSettings(r.Context()), buf, h.t(h.lang(r), noticeSettingsFailed))
}

// AdminOrders lists every order with the buyer's contact details.
func (h *Handlers) AdminOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := h.lang(r)
	page := views.OrdersPage{Section: sectionOrders, Admin: true}
	orders, err := h.backend.Orders(ctx, token(r))
	if err != nil {
		if h.rejected(w, r, err) {
			return
		}
		observability.FromContext(ctx).Warn("list orders failed", zap.Error(err))
		page.Error = h.t(lang, noticeOrdersFailed)
	}
	page.Orders = h.orderRows(orders, lang)
	page.Layout = h.layout(r, h.loadSettings(ctx), "title.orders")
	h.renderPage(w, r, http.StatusOK, views.PageOrders, page)
}
