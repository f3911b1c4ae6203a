package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/httpserver"
	"hesapvitrini.com/vitrine/internal/session"
)

var (
	testHashKey  = []byte("0123456789abcdef0123456789abcdef")
	testBlockKey = []byte("abcdef0123456789abcdef0123456789")
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBackend wires a custom marketplace implementation.
func WithBackend(service backend.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Backend = service
	}
}

// WithLoginRate overrides the sign-in throttle, e.g. "2-M".
func WithLoginRate(rate string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.LoginRate = rate
	}
}

// WithBackendOrigin sets the origin uploaded media resolves against.
func WithBackendOrigin(origin string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BackendOrigin = origin
	}
}

// NewServer constructs an httptest server running the full HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{HashKey: testHashKey, BlockKey: testBlockKey})
	require.NoError(t, err)

	cfg := httpserver.Config{
		Address:   ":0",
		Backend:   backend.NewStaticService(),
		Sessions:  sessions,
		PublicURL: "https://vitrin.example",
		LoginRate: "1000-M",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Client is a cookie-keeping browser stand-in that does not follow redirects.
type Client struct {
	t    testing.TB
	base string
	http *http.Client
	csrf string
}

// NewClient returns a Client bound to ts.
func NewClient(t testing.TB, ts *httptest.Server) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Client{
		t:    t,
		base: ts.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Response is a fully read response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Location is the redirect target, if any.
func (r Response) Location() string {
	return r.Header.Get("Location")
}

// Get fetches path. Extra headers are given as name/value pairs.
func (c *Client) Get(path string, headers ...string) Response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	setHeaders(req, headers)
	return c.do(req)
}

// Post submits form to path with the session's CSRF token added.
func (c *Client) Post(path string, form url.Values, headers ...string) Response {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", c.CSRFToken())
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setHeaders(req, headers)
	return c.do(req)
}

// PostRaw submits body as is with the given content type.
func (c *Client) PostRaw(path, contentType string, body io.Reader, headers ...string) Response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", contentType)
	setHeaders(req, headers)
	return c.do(req)
}

// CSRFToken returns the token bound to the session. The first call loads the
// storefront to obtain it; the token lives as long as the session cookie.
func (c *Client) CSRFToken() string {
	c.t.Helper()
	if c.csrf != "" {
		return c.csrf
	}
	res := c.Get("/")
	require.Equal(c.t, http.StatusOK, res.Status)
	token, ok := ParseHTML(c.t, res.Body).Find(`meta[name="csrf-token"]`).Attr("content")
	require.True(c.t, ok)
	require.NotEmpty(c.t, token)
	c.csrf = token
	return token
}

// Login signs in and asserts the redirect.
func (c *Client) Login(email, password string) Response {
	c.t.Helper()
	res := c.Post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, res.Status, string(res.Body))
	return res
}

func (c *Client) do(req *http.Request) Response {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
}

func setHeaders(req *http.Request, pairs []string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		req.Header.Set(pairs[i], pairs[i+1])
	}
}
