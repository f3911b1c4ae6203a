package payment

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
)

func boolPtr(v bool) *bool { return &v }

func TestResolveOptions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		settings backend.Settings
		iban     bool
		card     bool
		tab      Method
		layout   Layout
	}{
		{
			name:     "flags unset count as enabled",
			settings: backend.Settings{IBAN: "TR1", ShopierAPIKey: "k"},
			iban:     true, card: true, tab: MethodBank, layout: LayoutSelector,
		},
		{
			name:     "iban disabled explicitly",
			settings: backend.Settings{IBAN: "TR1", ShopierAPIKey: "k", EnableIBANPayment: boolPtr(false)},
			card:     true, tab: MethodCard, layout: LayoutSingle,
		},
		{
			name:     "card enabled but no key",
			settings: backend.Settings{IBAN: "TR1", EnableCardPayment: boolPtr(true)},
			iban:     true, tab: MethodBank, layout: LayoutSingle,
		},
		{
			name:     "nothing configured",
			settings: backend.Settings{},
			tab:      MethodCard, layout: LayoutContactOnly,
		},
		{
			name:     "blank iban is not configured",
			settings: backend.Settings{IBAN: "   "},
			tab:      MethodCard, layout: LayoutContactOnly,
		},
	}
	for _, tc := range cases {
		opts := Resolve(tc.settings)
		require.Equal(t, tc.iban, opts.IBANAvailable, tc.name)
		require.Equal(t, tc.card, opts.CardAvailable, tc.name)
		require.Equal(t, tc.tab, opts.DefaultTab, tc.name)
		require.Equal(t, tc.layout, opts.Layout(), tc.name)
		require.Equal(t, tc.iban || tc.card, opts.AnyAvailable(), tc.name)
	}
}

func TestOptionsMethods(t *testing.T) {
	t.Parallel()

	opts := Resolve(backend.Settings{IBAN: "TR1", ShopierAPIKey: "k"})
	require.Equal(t, []Method{MethodBank, MethodCard}, opts.Methods())
	require.True(t, opts.Offers(MethodCard))
	require.False(t, Options{}.Offers(MethodBank))
}

func testItem(t *testing.T) Item {
	t.Helper()
	price, err := backend.ParsePrice("1500")
	require.NoError(t, err)
	return Item{ID: "acc-1", Name: "Immortal Hesap", Price: price}
}

func TestContactHandoff(t *testing.T) {
	t.Parallel()

	_, err := ContactHandoff(backend.Settings{}, testItem(t))
	require.ErrorIs(t, err, ErrContactNotConfigured)

	h, err := ContactHandoff(backend.Settings{WhatsAppNumber: "+90 555 111 22 33"}, testItem(t))
	require.NoError(t, err)
	require.Equal(t, "Merhaba, Immortal Hesap (ID: acc-1) hesabını satın almak istiyorum. Fiyat: 1500₺", h.Message)

	u, err := url.Parse(h.URL)
	require.NoError(t, err)
	require.Equal(t, "wa.me", u.Host)
	require.Equal(t, "/905551112233", u.Path)
	require.Equal(t, h.Message, u.Query().Get("text"))
	require.NotContains(t, u.RawQuery, "+")
}

func TestBankTransfer(t *testing.T) {
	t.Parallel()

	_, err := BankTransfer(backend.Settings{WhatsAppNumber: "905"}, testItem(t))
	require.ErrorIs(t, err, ErrIBANNotConfigured)

	tr, err := BankTransfer(backend.Settings{
		IBAN:           " TR12 0001 ",
		BankName:       "Ziraat",
		IBANName:       "Ayşe",
		IBANSurname:    "Yılmaz",
		WhatsAppNumber: "905551112233",
	}, testItem(t))
	require.NoError(t, err)
	require.Equal(t, "TR12 0001", tr.IBAN)
	require.Equal(t, "Ayşe Yılmaz", tr.Holder)
	require.Equal(t, TransferHandoffDelay, tr.Delay)
	require.Equal(t, "Merhaba, Immortal Hesap (ID: acc-1) hesabı için havale yaptım. Dekont gönderiyorum.", tr.FollowUp.Message)
}

type starterFunc func(ctx context.Context, token, accountID string) (*backend.PaymentSession, error)

func (f starterFunc) StartCardPayment(ctx context.Context, token, accountID string) (*backend.PaymentSession, error) {
	return f(ctx, token, accountID)
}

func TestStartCard(t *testing.T) {
	t.Parallel()

	calls := 0
	ok := starterFunc(func(_ context.Context, token, accountID string) (*backend.PaymentSession, error) {
		calls++
		require.Equal(t, "tok", token)
		require.Equal(t, "acc-1", accountID)
		return &backend.PaymentSession{PaymentURL: "https://pay.example/1"}, nil
	})

	_, err := StartCard(context.Background(), ok, "tok", backend.Settings{}, testItem(t))
	require.ErrorIs(t, err, ErrCardNotConfigured)
	require.Zero(t, calls)

	session, err := StartCard(context.Background(), ok, "tok", backend.Settings{ShopierAPIKey: "k"}, testItem(t))
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/1", session.PaymentURL)

	boom := errors.New("gateway down")
	failing := starterFunc(func(context.Context, string, string) (*backend.PaymentSession, error) {
		calls++
		return nil, boom
	})
	_, err = StartCard(context.Background(), failing, "tok", backend.Settings{ShopierAPIKey: "k"}, testItem(t))
	require.ErrorIs(t, err, ErrCardFailed)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}

func TestShareAndCallbackLinks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://vitrin.example/account/acc-1", ShareLink("https://vitrin.example/", "acc-1"))
	require.Equal(t, "https://api.example/api/payment/shopier/callback", CallbackURL("https://api.example"))
}
