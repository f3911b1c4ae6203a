package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
)

func newService(t *testing.T, handler http.HandlerFunc) *backend.HTTPService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	svc, err := backend.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)
	return svc
}

func TestNewHTTPServiceRequiresAbsoluteURL(t *testing.T) {
	t.Parallel()

	_, err := backend.NewHTTPService("", nil)
	require.Error(t, err)
	_, err = backend.NewHTTPService("/relative", nil)
	require.Error(t, err)
}

func TestHTTPServiceAccountsEncodesFilter(t *testing.T) {
	t.Parallel()

	var gotQuery string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/accounts", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[{"id":"a1","category_id":"c1","name":"Hesap","price":149.9,"status":"available"}]`)
	})

	accounts, err := svc.Accounts(context.Background(), "", backend.AccountFilter{
		CategoryID: "c1",
		Search:     "  elmas ",
		Status:     backend.StatusAvailable,
	})
	require.NoError(t, err)
	require.Equal(t, "category_id=c1&search=elmas&status=available", gotQuery)
	require.Len(t, accounts, 1)
	require.True(t, accounts[0].Price.Equal(decimal.RequireFromString("149.9")))
}

func TestHTTPServiceAccountsOmitsEmptyFilter(t *testing.T) {
	t.Parallel()

	var gotQuery string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[]`)
	})

	accounts, err := svc.Accounts(context.Background(), "", backend.AccountFilter{})
	require.NoError(t, err)
	require.Empty(t, gotQuery)
	require.Empty(t, accounts)
}

func TestHTTPServiceCreateAccountSendsNumericPrice(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	var auth, idem string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/accounts", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		idem = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = io.WriteString(w, `{"id":"new","name":"Hesap","price":"250.50"}`)
	})

	price, err := backend.ParsePrice("250,50")
	require.NoError(t, err)
	created, err := svc.CreateAccount(context.Background(), "tok", backend.AccountInput{
		CategoryID: "c1",
		Name:       "Hesap",
		Price:      price,
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", auth)
	require.NotEmpty(t, idem)
	require.Equal(t, 250.5, payload["price"])
	require.Equal(t, "c1", payload["category_id"])
	require.Equal(t, "250.5", created.Price.String())
}

func TestHTTPServiceUploadMultipart(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload/video", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "clip.mp4", header.Filename)
		require.Equal(t, "video-bytes", string(data))
		_, _ = io.WriteString(w, `{"filename":"x.mp4","url":"/uploads/x.mp4"}`)
	})

	res, err := svc.Upload(context.Background(), "tok", backend.UploadVideo, backend.File{
		Filename:    `C:\videos\clip.mp4`,
		ContentType: "video/mp4",
		Data:        []byte("video-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, "/uploads/x.mp4", res.URL)
}

func TestHTTPServiceStartCardPayment(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/payment/shopier", r.URL.Path)
		require.Equal(t, "acc-1", r.URL.Query().Get("account_id"))
		_, _ = io.WriteString(w, `{"payment_url":"https://pay.example/abc","order_id":"o1"}`)
	})

	session, err := svc.StartCardPayment(context.Background(), "tok", "acc-1")
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/abc", session.PaymentURL)
	require.Equal(t, "o1", session.OrderID)
}

func TestHTTPServiceErrorDetail(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Account <b>not</b> found"}`)
	})

	_, err := svc.Account(context.Background(), "", "missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, backend.ErrNotFound))
	require.False(t, errors.Is(err, backend.ErrUnauthorized))
	require.Equal(t, "Account not found", backend.Detail(err))
}

func TestHTTPServiceRejectsPathLikeIDs(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
	})

	_, err := svc.Account(context.Background(), "", "../settings")
	require.ErrorIs(t, err, backend.ErrNotFound)
	require.ErrorIs(t, svc.DeleteCategory(context.Background(), "tok", ""), backend.ErrNotFound)
}

func TestHTTPServiceSettingsFlags(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"site_name":"Vitrin","iban":"TR1","enable_card_payment":false}`)
	})

	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)
	require.Nil(t, settings.EnableIBANPayment)
	require.NotNil(t, settings.EnableCardPayment)
	require.False(t, *settings.EnableCardPayment)
	require.Equal(t, "Vitrin", settings.DisplayName())
}
