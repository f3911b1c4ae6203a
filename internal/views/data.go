package views

import (
	"hesapvitrini.com/vitrine/internal/session"
)

// Layout is shared by every full page.
type Layout struct {
	Lang      string
	Title     string
	SiteName  string
	Logo      string
	Favicon   string
	CSRFToken string
	Path      string
	User      *UserView
	Notices   []session.Notice
	Languages []string
}

// UserView is the signed-in visitor shown in the header.
type UserView struct {
	Email   string
	IsAdmin bool
}

// CategoryLink is one entry of the category filter bar.
type CategoryLink struct {
	ID     string
	Name   string
	Href   string
	Active bool
}

// FilterLink is a status filter chip.
type FilterLink struct {
	Value  string
	Label  string
	Href   string
	Active bool
}

// AccountCard is a catalog item prepared for display.
type AccountCard struct {
	ID           string
	Name         string
	CategoryID   string
	CategoryName string
	Price        string
	Description  string
	Details      string
	Status       string
	StatusLabel  string
	MediaKind    string
	MediaBadge   string
	MediaSource  string
	Views        string
	CreatedAt    string
	SoldAt       string
	DetailHref   string
	ShareLink    string
}

// CatalogList is the swappable result list of the storefront.
type CatalogList struct {
	Lang     string
	Accounts []AccountCard
	Error    string
}

// HomePage is the storefront.
type HomePage struct {
	Layout
	Categories []CategoryLink
	AllHref    string
	AllActive  bool
	Category   string
	Search     string
	List       CatalogList
}

// PaymentMethodView is one tab of the checkout selector.
type PaymentMethodView struct {
	Method string
	Label  string
	Active bool
}

// TransferView is shown after the visitor chose bank transfer.
type TransferView struct {
	IBAN        string
	BankName    string
	Holder      string
	FollowUpURL string
	DelayMillis int64
}

// VideoPreview describes the preview dialog button.
type VideoPreview struct {
	Kind   string
	Source string
	Label  string
}

// DetailPage is a single catalog item with its checkout options.
type DetailPage struct {
	Layout
	Account       AccountCard
	Preview       *VideoPreview
	PaymentLayout string
	Methods       []PaymentMethodView
	ActiveTab     string
	IBAN          string
	BankName      string
	Holder        string
	CheckoutBase  string
	Transfer      *TransferView
	Sold          bool
}

// LoginPage is the sign-in form.
type LoginPage struct {
	Layout
	Email string
}

// RegisterPage is the sign-up form.
type RegisterPage struct {
	Layout
	Email string
	Phone string
}

// OrderRow is an order prepared for display.
type OrderRow struct {
	ID          string
	AccountID   string
	AccountName string
	UserEmail   string
	UserPhone   string
	Amount      string
	Status      string
	Method      string
	CreatedAt   string
}

// OrdersPage lists orders; the admin variant shows the buyer.
type OrdersPage struct {
	Layout
	Section string
	Orders  []OrderRow
	Admin   bool
	Error   string
}

// StatCard is one dashboard figure.
type StatCard struct {
	Key   string
	Label string
	Value string
}

// DashboardPage is the admin landing page.
type DashboardPage struct {
	Layout
	Section     string
	Stats       []StatCard
	MostViewed  []AccountCard
	CallbackURL string
	Error       string
}

// AccountForm is the create or edit form of a catalog item.
type AccountForm struct {
	ID          string
	CategoryID  string
	Name        string
	Price       string
	Description string
	Details     string
	VideoURL    string
	ImageFile   string
	VideoFile   string
	ImageURL    string
	VideoSrc    string
	Status      string
	Statuses    []FilterLink
	Error       string
	Action      string
	Editing     bool
}

// AdminAccountList is the swappable admin result table.
type AdminAccountList struct {
	Lang      string
	CSRFToken string
	Accounts  []AccountCard
	Error     string
	EditBase  string
	Confirm   string
}

// AdminAccountsPage manages catalog items.
type AdminAccountsPage struct {
	Layout
	Section    string
	Categories []CategoryLink
	AllHref    string
	AllActive  bool
	Statuses   []FilterLink
	Category   string
	Status     string
	Search     string
	List       AdminAccountList
	Form       AccountForm
}

// CategoryRow is a category in the admin list.
type CategoryRow struct {
	ID          string
	Name        string
	Description string
	CreatedAt   string
}

// AdminCategoriesPage manages categories.
type AdminCategoriesPage struct {
	Layout
	Section     string
	Categories  []CategoryRow
	Name        string
	Description string
	Error       string
	Confirm     string
}

// AdminSettingsPage edits the settings singleton.
type AdminSettingsPage struct {
	Layout
	Section     string
	Form        SettingsForm
	CallbackURL string
	Error       string
}

// SettingsForm mirrors every editable settings field.
type SettingsForm struct {
	SiteName            string
	SiteTitle           string
	SiteLogo            string
	SiteFavicon         string
	WhatsAppNumber      string
	IBAN                string
	BankName            string
	IBANName            string
	IBANSurname         string
	ShopierAPIKey       string
	ShopierAPISecret    string
	ShopierWebsiteIndex string
	EnableIBANPayment   bool
	EnableCardPayment   bool
}
