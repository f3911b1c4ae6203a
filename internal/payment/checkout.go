package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hesapvitrini.com/vitrine/internal/backend"
)

// TransferHandoffDelay is how long the bank flow waits after the IBAN copy
// notice before opening the messaging link.
const TransferHandoffDelay = time.Second

const messagingBase = "https://wa.me/"

var (
	// ErrContactNotConfigured means no WhatsApp number is set.
	ErrContactNotConfigured = errors.New("payment: contact number not configured")
	// ErrIBANNotConfigured means no IBAN is set.
	ErrIBANNotConfigured = errors.New("payment: iban not configured")
	// ErrCardNotConfigured means the card gateway key is missing.
	ErrCardNotConfigured = errors.New("payment: card gateway not configured")
	// ErrCardFailed wraps any failure while opening the hosted card payment.
	ErrCardFailed = errors.New("payment: card payment could not be started")
)

// Item is the part of a catalog item quoted in hand-off messages.
type Item struct {
	ID    string
	Name  string
	Price backend.Price
}

// ItemFrom copies the quoted fields from an account.
func ItemFrom(a backend.Account) Item {
	return Item{ID: a.ID, Name: a.Name, Price: a.Price}
}

// Handoff is an external messaging deep link and the text it carries.
type Handoff struct {
	URL     string
	Message string
}

// PurchaseMessage is the text sent when asking to buy an item.
func PurchaseMessage(item Item) string {
	return fmt.Sprintf("Merhaba, %s (ID: %s) hesabını satın almak istiyorum. Fiyat: %s₺", item.Name, item.ID, item.Price.String())
}

// TransferMessage is the text sent after paying by bank transfer.
func TransferMessage(item Item) string {
	return fmt.Sprintf("Merhaba, %s (ID: %s) hesabı için havale yaptım. Dekont gönderiyorum.", item.Name, item.ID)
}

// ContactHandoff builds the purchase request link for the configured number.
func ContactHandoff(settings backend.Settings, item Item) (Handoff, error) {
	number := normaliseNumber(settings.WhatsAppNumber)
	if number == "" {
		return Handoff{}, ErrContactNotConfigured
	}
	msg := PurchaseMessage(item)
	return Handoff{URL: messagingLink(number, msg), Message: msg}, nil
}

// Transfer is the bank transfer instructions plus the deferred confirmation link.
type Transfer struct {
	IBAN     string
	BankName string
	Holder   string
	FollowUp Handoff
	Delay    time.Duration
}

// BankTransfer prepares the IBAN to copy and the confirmation hand-off.
func BankTransfer(settings backend.Settings, item Item) (Transfer, error) {
	iban := strings.TrimSpace(settings.IBAN)
	if iban == "" {
		return Transfer{}, ErrIBANNotConfigured
	}
	msg := TransferMessage(item)
	return Transfer{
		IBAN:     iban,
		BankName: strings.TrimSpace(settings.BankName),
		Holder:   AccountHolder(settings),
		FollowUp: Handoff{URL: messagingLink(normaliseNumber(settings.WhatsAppNumber), msg), Message: msg},
		Delay:    TransferHandoffDelay,
	}, nil
}

// AccountHolder joins the configured holder name and surname.
func AccountHolder(settings backend.Settings) string {
	return strings.TrimSpace(strings.TrimSpace(settings.IBANName) + " " + strings.TrimSpace(settings.IBANSurname))
}

// SessionStarter opens a hosted card payment on the backend.
type SessionStarter interface {
	StartCardPayment(ctx context.Context, token, accountID string) (*backend.PaymentSession, error)
}

// StartCard requests a hosted payment page for the item. It does not retry.
func StartCard(ctx context.Context, starter SessionStarter, token string, settings backend.Settings, item Item) (*backend.PaymentSession, error) {
	if strings.TrimSpace(settings.ShopierAPIKey) == "" {
		return nil, ErrCardNotConfigured
	}
	session, err := starter.StartCardPayment(ctx, token, item.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCardFailed, err)
	}
	return session, nil
}

// ShareLink is the public detail URL of an item.
func ShareLink(publicURL, id string) string {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	return base + "/account/" + url.PathEscape(id)
}

// CallbackURL is the gateway callback the admin copies into the gateway panel.
func CallbackURL(backendOrigin string) string {
	return strings.TrimRight(strings.TrimSpace(backendOrigin), "/") + "/api/payment/shopier/callback"
}

func messagingLink(number, message string) string {
	// Spaces as %20, the way browsers encode URI components.
	return messagingBase + number + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

func normaliseNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
