package backend

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaticService is an in-memory Service used by tests and local development
// when no backend URL is configured.
type StaticService struct {
	mu sync.Mutex

	categories []Category
	accounts   []Account
	settings   Settings
	users      map[string]staticUser
	orders     []Order
	visits     int

	// Failures makes the named operation (e.g. "Upload:video", "CreateAccount") return the error.
	Failures map[string]error
	// Calls records operation names in invocation order.
	Calls []string

	Now func() time.Time
}

type staticUser struct {
	user     User
	password string
	token    string
}

// NewStaticService constructs a StaticService seeded with demo data.
func NewStaticService() *StaticService {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s := &StaticService{
		users:    make(map[string]staticUser),
		Failures: make(map[string]error),
		Now:      func() time.Time { return now },
	}
	s.categories = []Category{
		{ID: "cat-valorant", Name: "Valorant", Description: "Rank hesapları", CreatedAt: now},
		{ID: "cat-lol", Name: "League of Legends", CreatedAt: now},
	}
	s.accounts = []Account{
		{
			ID: "acc-1", CategoryID: "cat-valorant", Name: "Immortal 3 Hesap",
			Price: NewPrice(decimal.NewFromInt(1500)), Description: "Tüm ajanlar açık",
			ImageFile: "/uploads/acc-1.jpg", Status: StatusAvailable, Views: 42, CreatedAt: now,
		},
		{
			ID: "acc-2", CategoryID: "cat-lol", Name: "Elmas Hesap",
			Price: NewPrice(decimal.RequireFromString("749.90")), Description: "120 şampiyon",
			VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Status: StatusAvailable, Views: 7, CreatedAt: now,
		},
		{
			ID: "acc-3", CategoryID: "cat-lol", Name: "Satılmış Hesap",
			Price: NewPrice(decimal.NewFromInt(300)), Status: StatusSold, CreatedAt: now,
		},
	}
	s.settings = Settings{
		SiteName:       DefaultSiteName,
		SiteTitle:      DefaultSiteName,
		WhatsAppNumber: "905551112233",
		IBAN:           "TR000000000000000000000000",
		BankName:       "Demo Bank",
		IBANName:       "Ayşe",
		IBANSurname:    "Yılmaz",
	}
	s.AddUser(User{ID: "user-admin", Email: "admin@example.com", IsAdmin: true}, "admin123", "admin-token")
	s.AddUser(User{ID: "user-1", Email: "musteri@example.com", Phone: "05550000000"}, "secret", "user-token")
	return s
}

// AddUser registers credentials and a fixed token for the user.
func (s *StaticService) AddUser(user User, password, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]staticUser)
	}
	s.users[strings.ToLower(user.Email)] = staticUser{user: user, password: password, token: token}
}

// SetSettings replaces the stored settings.
func (s *StaticService) SetSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// SetAccounts replaces the stored catalog.
func (s *StaticService) SetAccounts(accounts []Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append([]Account(nil), accounts...)
}

// Visits returns the number of tracked visits.
func (s *StaticService) Visits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visits
}

// CallCount returns how many times op has been invoked.
func (s *StaticService) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// Operations returns a copy of the recorded operation names.
func (s *StaticService) Operations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Calls...)
}

// Fail makes op return err from now on; a nil err clears it.
func (s *StaticService) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.Failures, op)
		return
	}
	s.Failures[op] = err
}

func (s *StaticService) enter(op string) error {
	s.Calls = append(s.Calls, op)
	if err, ok := s.Failures[op]; ok {
		return err
	}
	return nil
}

func (s *StaticService) userForToken(token string) (User, bool) {
	for _, u := range s.users {
		if token != "" && u.token == token {
			return u.user, true
		}
	}
	return User{}, false
}

func (s *StaticService) requireUser(token string) (User, error) {
	u, ok := s.userForToken(token)
	if !ok {
		return User{}, &Error{Status: 401, Message: "Could not validate credentials"}
	}
	return u, nil
}

func (s *StaticService) requireAdmin(token string) error {
	u, err := s.requireUser(token)
	if err != nil {
		return err
	}
	if !u.IsAdmin {
		return &Error{Status: 403, Message: "Not enough permissions"}
	}
	return nil
}

// Login implements Service.
func (s *StaticService) Login(_ context.Context, email, password string) (*AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Login"); err != nil {
		return nil, err
	}
	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || u.password != password {
		return nil, &Error{Status: 401, Message: "Incorrect email or password"}
	}
	return &AuthResult{AccessToken: u.token, TokenType: "bearer", User: u.user}, nil
}

// Register implements Service.
func (s *StaticService) Register(_ context.Context, req RegisterRequest) (*AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Register"); err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(req.Email))
	if _, exists := s.users[key]; exists {
		return nil, &Error{Status: 400, Message: "Email already registered"}
	}
	u := staticUser{
		user:     User{ID: uuid.NewString(), Email: strings.TrimSpace(req.Email), Phone: req.Phone},
		password: req.Password,
		token:    "token-" + uuid.NewString(),
	}
	s.users[key] = u
	return &AuthResult{AccessToken: u.token, TokenType: "bearer", User: u.user}, nil
}

// Me implements Service.
func (s *StaticService) Me(_ context.Context, token string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Me"); err != nil {
		return nil, err
	}
	u, err := s.requireUser(token)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Categories implements Service.
func (s *StaticService) Categories(context.Context) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Categories"); err != nil {
		return nil, err
	}
	return append([]Category(nil), s.categories...), nil
}

// CreateCategory implements Service.
func (s *StaticService) CreateCategory(_ context.Context, token string, input CategoryInput) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateCategory"); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	c := Category{ID: uuid.NewString(), Name: input.Name, Description: input.Description, CreatedAt: s.Now()}
	s.categories = append(s.categories, c)
	return &c, nil
}

// DeleteCategory implements Service. Accounts in the category are removed too.
func (s *StaticService) DeleteCategory(_ context.Context, token, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteCategory"); err != nil {
		return err
	}
	if err := s.requireAdmin(token); err != nil {
		return err
	}
	idx := -1
	for i, c := range s.categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &Error{Status: 404, Message: "Category not found"}
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	kept := s.accounts[:0]
	for _, a := range s.accounts {
		if a.CategoryID != id {
			kept = append(kept, a)
		}
	}
	s.accounts = kept
	return nil
}

// Accounts implements Service.
func (s *StaticService) Accounts(_ context.Context, _ string, filter AccountFilter) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Accounts"); err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if filter.CategoryID != "" && a.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(a.Name), term) && !strings.Contains(strings.ToLower(a.ID), term) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Account implements Service. Each read counts as a view.
func (s *StaticService) Account(_ context.Context, _ string, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Account"); err != nil {
		return nil, err
	}
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Views++
			a := s.accounts[i]
			return &a, nil
		}
	}
	return nil, &Error{Status: 404, Message: "Account not found"}
}

// CreateAccount implements Service.
func (s *StaticService) CreateAccount(_ context.Context, token string, input AccountInput) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateAccount"); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	a := Account{
		ID:          uuid.NewString(),
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Details:     input.Details,
		VideoURL:    input.VideoURL,
		VideoFile:   input.VideoFile,
		ImageFile:   input.ImageFile,
		Status:      StatusAvailable,
		CreatedAt:   s.Now(),
	}
	s.accounts = append(s.accounts, a)
	return &a, nil
}

// UpdateAccount implements Service.
func (s *StaticService) UpdateAccount(_ context.Context, token, id string, input AccountUpdate) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateAccount"); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	for i := range s.accounts {
		if s.accounts[i].ID != id {
			continue
		}
		a := &s.accounts[i]
		a.Name = input.Name
		a.Price = input.Price
		a.Description = input.Description
		a.Details = input.Details
		a.VideoURL = input.VideoURL
		a.VideoFile = input.VideoFile
		a.ImageFile = input.ImageFile
		now := s.Now()
		a.UpdatedAt = &now
		if input.Status != "" {
			a.Status = input.Status
			if input.Status == StatusSold {
				a.SoldAt = &now
			}
		}
		out := *a
		return &out, nil
	}
	return nil, &Error{Status: 404, Message: "Account not found"}
}

// DeleteAccount implements Service.
func (s *StaticService) DeleteAccount(_ context.Context, token, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteAccount"); err != nil {
		return err
	}
	if err := s.requireAdmin(token); err != nil {
		return err
	}
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return nil
		}
	}
	return &Error{Status: 404, Message: "Account not found"}
}

// Settings implements Service.
func (s *StaticService) Settings(context.Context) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Settings"); err != nil {
		return nil, err
	}
	out := s.settings
	return &out, nil
}

// UpdateSettings implements Service.
func (s *StaticService) UpdateSettings(_ context.Context, token string, input SettingsUpdate) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateSettings"); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	iban, card := input.EnableIBANPayment, input.EnableCardPayment
	s.settings = Settings{
		SiteName:            input.SiteName,
		SiteTitle:           input.SiteTitle,
		SiteLogo:            input.SiteLogo,
		SiteFavicon:         input.SiteFavicon,
		WhatsAppNumber:      input.WhatsAppNumber,
		IBAN:                input.IBAN,
		BankName:            input.BankName,
		IBANName:            input.IBANName,
		IBANSurname:         input.IBANSurname,
		ShopierAPIKey:       input.ShopierAPIKey,
		ShopierAPISecret:    input.ShopierAPISecret,
		ShopierWebsiteIndex: input.ShopierWebsiteIndex,
		EnableIBANPayment:   &iban,
		EnableCardPayment:   &card,
	}
	out := s.settings
	return &out, nil
}

// Analytics implements Service.
func (s *StaticService) Analytics(_ context.Context, token string) (*Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Analytics"); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	out := Analytics{
		TotalAccounts:    len(s.accounts),
		TotalCategories:  len(s.categories),
		VisitsLast30Days: s.visits,
	}
	for _, u := range s.users {
		if !u.user.IsAdmin {
			out.TotalUsers++
		}
	}
	for _, a := range s.accounts {
		switch a.Status {
		case StatusAvailable:
			out.AvailableAccounts++
		case StatusPending:
			out.PendingAccounts++
		case StatusSold:
			out.SoldAccounts++
		}
	}
	viewed := append([]Account(nil), s.accounts...)
	sort.SliceStable(viewed, func(i, j int) bool { return viewed[i].Views > viewed[j].Views })
	if len(viewed) > 5 {
		viewed = viewed[:5]
	}
	out.MostViewedAccounts = viewed
	return &out, nil
}

// Upload implements Service.
func (s *StaticService) Upload(_ context.Context, token string, kind UploadKind, file File) (*UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Upload:" + string(kind)); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	if file.Empty() {
		return nil, &Error{Status: 400, Message: "empty file"}
	}
	name := uuid.NewString() + path.Ext(file.Filename)
	return &UploadResult{Filename: name, URL: "/uploads/" + name}, nil
}

// StartCardPayment implements Service.
func (s *StaticService) StartCardPayment(_ context.Context, token, accountID string) (*PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("StartCardPayment"); err != nil {
		return nil, err
	}
	u, err := s.requireUser(token)
	if err != nil {
		return nil, err
	}
	if s.settings.ShopierAPIKey == "" || s.settings.ShopierAPISecret == "" {
		return nil, &Error{Status: 400, Message: "Shopier not configured"}
	}
	var account *Account
	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			account = &s.accounts[i]
		}
	}
	if account == nil {
		return nil, &Error{Status: 404, Message: "Account not found"}
	}
	order := Order{
		ID:            uuid.NewString(),
		AccountID:     account.ID,
		AccountName:   account.Name,
		UserEmail:     u.Email,
		UserPhone:     u.Phone,
		Amount:        account.Price,
		Status:        "pending",
		PaymentMethod: "shopier",
		CreatedAt:     s.Now(),
	}
	s.orders = append(s.orders, order)
	return &PaymentSession{
		PaymentURL: fmt.Sprintf("https://www.shopier.com/pay/%s", order.ID),
		OrderID:    order.ID,
	}, nil
}

// TrackVisit implements Service.
func (s *StaticService) TrackVisit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("TrackVisit"); err != nil {
		return err
	}
	s.visits++
	return nil
}

// Orders implements Service.
func (s *StaticService) Orders(_ context.Context, token string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Orders"); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(token); err != nil {
		return nil, err
	}
	return newestFirst(s.orders), nil
}

// MyOrders implements Service.
func (s *StaticService) MyOrders(_ context.Context, token string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MyOrders"); err != nil {
		return nil, err
	}
	u, err := s.requireUser(token)
	if err != nil {
		return nil, err
	}
	mine := make([]Order, 0)
	for _, o := range s.orders {
		if o.UserEmail == u.Email {
			mine = append(mine, o)
		}
	}
	return newestFirst(mine), nil
}

func newestFirst(orders []Order) []Order {
	out := append([]Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

var (
	_ Service = (*HTTPService)(nil)
	_ Service = (*StaticService)(nil)
)
