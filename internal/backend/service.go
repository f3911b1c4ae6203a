package backend

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Service enumerates the marketplace API calls made by the web front end.
type Service interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Me(ctx context.Context, token string) (*User, error)

	Categories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, token string, input CategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, token, id string) error

	Accounts(ctx context.Context, token string, filter AccountFilter) ([]Account, error)
	Account(ctx context.Context, token, id string) (*Account, error)
	CreateAccount(ctx context.Context, token string, input AccountInput) (*Account, error)
	UpdateAccount(ctx context.Context, token, id string, input AccountUpdate) (*Account, error)
	DeleteAccount(ctx context.Context, token, id string) error

	Settings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, token string, input SettingsUpdate) (*Settings, error)

	Analytics(ctx context.Context, token string) (*Analytics, error)
	Upload(ctx context.Context, token string, kind UploadKind, file File) (*UploadResult, error)
	StartCardPayment(ctx context.Context, token, accountID string) (*PaymentSession, error)
	TrackVisit(ctx context.Context) error

	Orders(ctx context.Context, token string) ([]Order, error)
	MyOrders(ctx context.Context, token string) ([]Order, error)
}

// Status is the lifecycle state of a catalog item.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
)

// Statuses lists the known statuses in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusPending, StatusSold}
}

// ParseStatus normalises raw input into a known status.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAvailable:
		return StatusAvailable, true
	case StatusPending:
		return StatusPending, true
	case StatusSold:
		return StatusSold, true
	default:
		return "", false
	}
}

// Category groups catalog items.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Account is a single catalog item offered for sale.
type Account struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id"`
	Name        string     `json:"name"`
	Price       Price      `json:"price"`
	Description string     `json:"description"`
	Details     string     `json:"details"`
	ImageFile   string     `json:"image_file"`
	VideoFile   string     `json:"video_file"`
	VideoURL    string     `json:"video_url"`
	Status      Status     `json:"status"`
	Views       int        `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
}

// Settings is the site-wide configuration singleton.
type Settings struct {
	SiteName            string `json:"site_name"`
	SiteTitle           string `json:"site_title"`
	SiteLogo            string `json:"site_logo"`
	SiteFavicon         string `json:"site_favicon"`
	WhatsAppNumber      string `json:"whatsapp_number"`
	IBAN                string `json:"iban"`
	BankName            string `json:"bank_name"`
	IBANName            string `json:"iban_name"`
	IBANSurname         string `json:"iban_surname"`
	ShopierAPIKey       string `json:"shopier_api_key"`
	ShopierAPISecret    string `json:"shopier_api_secret"`
	ShopierWebsiteIndex string `json:"shopier_website_index"`
	// Unset flags count as enabled.
	EnableIBANPayment *bool `json:"enable_iban_payment,omitempty"`
	EnableCardPayment *bool `json:"enable_card_payment,omitempty"`
}

// DefaultSiteName is shown until settings have been loaded.
const DefaultSiteName = "Hesap Vitrini"

// DisplayName returns the configured site name or the default.
func (s *Settings) DisplayName() string {
	if s == nil || strings.TrimSpace(s.SiteName) == "" {
		return DefaultSiteName
	}
	return s.SiteName
}

// Analytics is the admin dashboard aggregate.
type Analytics struct {
	TotalAccounts      int       `json:"total_accounts"`
	AvailableAccounts  int       `json:"available_accounts"`
	SoldAccounts       int       `json:"sold_accounts"`
	PendingAccounts    int       `json:"pending_accounts"`
	TotalCategories    int       `json:"total_categories"`
	TotalUsers         int       `json:"total_users"`
	VisitsLast30Days   int       `json:"visits_last_30_days"`
	MostViewedAccounts []Account `json:"most_viewed_accounts"`
}

// User is the signed-in customer or admin.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterRequest carries sign-up fields.
type RegisterRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Order is a card payment attempt recorded by the backend.
type Order struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	AccountName   string    `json:"account_name"`
	UserEmail     string    `json:"user_email,omitempty"`
	UserPhone     string    `json:"user_phone,omitempty"`
	Amount        Price     `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentSession is the hosted card payment page for one item.
type PaymentSession struct {
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id,omitempty"`
}

// UploadKind selects the upload endpoint.
type UploadKind string

const (
	UploadImage UploadKind = "image"
	UploadVideo UploadKind = "video"
)

// File is a not-yet-uploaded media selection.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether no file is held.
func (f File) Empty() bool {
	return len(f.Data) == 0
}

// UploadResult is the stored media path.
type UploadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// CategoryInput creates a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AccountInput creates a catalog item.
type AccountInput struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
	Details     string `json:"details"`
	VideoURL    string `json:"video_url"`
	VideoFile   string `json:"video_file"`
	ImageFile   string `json:"image_file"`
}

// AccountUpdate edits a catalog item. Category is fixed after creation.
type AccountUpdate struct {
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
	Details     string `json:"details"`
	VideoURL    string `json:"video_url"`
	VideoFile   string `json:"video_file"`
	ImageFile   string `json:"image_file"`
	Status      Status `json:"status,omitempty"`
}

// SettingsUpdate writes every settings field, including both payment toggles.
type SettingsUpdate struct {
	SiteName            string `json:"site_name"`
	SiteTitle           string `json:"site_title"`
	SiteLogo            string `json:"site_logo"`
	SiteFavicon         string `json:"site_favicon"`
	WhatsAppNumber      string `json:"whatsapp_number"`
	IBAN                string `json:"iban"`
	BankName            string `json:"bank_name"`
	IBANName            string `json:"iban_name"`
	IBANSurname         string `json:"iban_surname"`
	ShopierAPIKey       string `json:"shopier_api_key"`
	ShopierAPISecret    string `json:"shopier_api_secret"`
	ShopierWebsiteIndex string `json:"shopier_website_index"`
	EnableIBANPayment   bool   `json:"enable_iban_payment"`
	EnableCardPayment   bool   `json:"enable_card_payment"`
}

// AccountFilter narrows the catalog listing. Empty fields are omitted from the query.
type AccountFilter struct {
	CategoryID string
	Search     string
	Status     Status
}

// Values encodes the filter as query parameters.
func (f AccountFilter) Values() url.Values {
	values := url.Values{}
	if id := strings.TrimSpace(f.CategoryID); id != "" {
		values.Set("category_id", id)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		values.Set("search", term)
	}
	if f.Status != "" {
		values.Set("status", string(f.Status))
	}
	return values
}
