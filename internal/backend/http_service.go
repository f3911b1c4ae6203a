package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout    = 15 * time.Second
	idempotencyHeader = "Idempotency-Key"
	apiPrefix         = "api"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against the marketplace REST API.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service rooted at the backend origin (without the /api prefix).
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend: base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPService{base: parsed, client: client}, nil
}

// Origin returns the backend origin media paths are resolved against.
func (s *HTTPService) Origin() string {
	return strings.TrimRight(s.base.String(), "/")
}

// Login exchanges credentials for an access token.
func (s *HTTPService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	var out AuthResult
	if err := s.sendJSON(ctx, http.MethodPost, "auth/login", "", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a customer account and signs it in.
func (s *HTTPService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	var out AuthResult
	if err := s.sendJSON(ctx, http.MethodPost, "auth/register", "", req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the token belongs to.
func (s *HTTPService) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := s.getJSON(ctx, "auth/me", nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists every category.
func (s *HTTPService) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.getJSON(ctx, "categories", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds a category.
func (s *HTTPService) CreateCategory(ctx context.Context, token string, input CategoryInput) (*Category, error) {
	var out Category
	if err := s.sendJSON(ctx, http.MethodPost, "categories", token, input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category together with its accounts.
func (s *HTTPService) DeleteCategory(ctx context.Context, token, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return s.delete(ctx, "categories/"+id, token)
}

// Accounts lists catalog items in server order.
func (s *HTTPService) Accounts(ctx context.Context, token string, filter AccountFilter) ([]Account, error) {
	var out []Account
	if err := s.getJSON(ctx, "accounts", filter.Values(), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Account fetches one catalog item.
func (s *HTTPService) Account(ctx context.Context, token, id string) (*Account, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out Account
	if err := s.getJSON(ctx, "accounts/"+id, nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAccount adds a catalog item.
func (s *HTTPService) CreateAccount(ctx context.Context, token string, input AccountInput) (*Account, error) {
	var out Account
	if err := s.sendJSON(ctx, http.MethodPost, "accounts", token, input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAccount replaces the editable fields of a catalog item.
func (s *HTTPService) UpdateAccount(ctx context.Context, token, id string, input AccountUpdate) (*Account, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out Account
	if err := s.sendJSON(ctx, http.MethodPut, "accounts/"+id, token, input, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes a catalog item.
func (s *HTTPService) DeleteAccount(ctx context.Context, token, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return s.delete(ctx, "accounts/"+id, token)
}

// Settings fetches the public site settings.
func (s *HTTPService) Settings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := s.getJSON(ctx, "settings", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings writes the settings singleton.
func (s *HTTPService) UpdateSettings(ctx context.Context, token string, input SettingsUpdate) (*Settings, error) {
	var out Settings
	if err := s.sendJSON(ctx, http.MethodPut, "settings", token, input, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics fetches the admin dashboard counters.
func (s *HTTPService) Analytics(ctx context.Context, token string) (*Analytics, error) {
	var out Analytics
	if err := s.getJSON(ctx, "analytics/stats", nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload stores one media file and returns its server-relative path.
func (s *HTTPService) Upload(ctx context.Context, token string, kind UploadKind, file File) (*UploadResult, error) {
	if file.Empty() {
		return nil, errors.New("backend: upload: empty file")
	}
	switch kind {
	case UploadImage, UploadVideo:
	default:
		return nil, fmt.Errorf("backend: upload: unknown kind %q", kind)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	filename := path.Base(strings.ReplaceAll(file.Filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = "upload"
	}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("backend: upload: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("backend: upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: upload: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "upload/"+string(kind), nil, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(idempotencyHeader, uuid.NewString())

	var out UploadResult
	if err := s.do(req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, errors.New("backend: upload: response carried no url")
	}
	return &out, nil
}

// StartCardPayment asks the backend to open a hosted card payment for an item.
func (s *HTTPService) StartCardPayment(ctx context.Context, token, accountID string) (*PaymentSession, error) {
	query := url.Values{"account_id": []string{accountID}}
	req, err := s.newRequest(ctx, http.MethodPost, "payment/shopier", query, nil, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set(idempotencyHeader, uuid.NewString())
	var out PaymentSession
	if err := s.do(req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.PaymentURL) == "" {
		return nil, errors.New("backend: payment: response carried no payment url")
	}
	return &out, nil
}

// TrackVisit records a storefront visit.
func (s *HTTPService) TrackVisit(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodPost, "track/visit", nil, nil, "")
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

// Orders lists every order (admin).
func (s *HTTPService) Orders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	if err := s.getJSON(ctx, "orders", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyOrders lists the caller's orders.
func (s *HTTPService) MyOrders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	if err := s.getJSON(ctx, "orders/my", nil, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPService) getJSON(ctx context.Context, endpoint string, query url.Values, token string, out any) error {
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, query, nil, token)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *HTTPService) sendJSON(ctx context.Context, method, endpoint, token string, payload, out any, idempotent bool) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("backend: encode payload: %w", err)
	}
	req, err := s.newRequest(ctx, method, endpoint, nil, &buf, token)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotent {
		req.Header.Set(idempotencyHeader, uuid.NewString())
	}
	return s.do(req, out)
}

func (s *HTTPService) delete(ctx context.Context, endpoint, token string) error {
	req, err := s.newRequest(ctx, http.MethodDelete, endpoint, nil, nil, token)
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint, query), body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *HTTPService) resolve(endpoint string, query url.Values) string {
	ref := &url.URL{Path: path.Join(apiPrefix, strings.TrimPrefix(endpoint, "/"))}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return s.base.ResolveReference(ref).String()
}

func (s *HTTPService) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// validID rejects identifiers that would escape their path segment.
func validID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, "/\\?#")
}
