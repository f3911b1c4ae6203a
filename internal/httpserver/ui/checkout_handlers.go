package ui

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/backend"
	custommw "hesapvitrini.com/vitrine/internal/httpserver/middleware"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/payment"
	"hesapvitrini.com/vitrine/internal/session"
	"hesapvitrini.com/vitrine/internal/views"
)

// checkoutTarget loads the item being bought. Sold items go back to their
// detail page, which no longer offers a checkout.
func (h *Handlers) checkoutTarget(w http.ResponseWriter, r *http.Request) (*backend.Account, backend.Settings, bool) {
	account, ok := h.loadAccount(w, r)
	if !ok {
		return nil, backend.Settings{}, false
	}
	if account.Status == backend.StatusSold {
		custommw.Redirect(w, r, detailPath(account.ID))
		return nil, backend.Settings{}, false
	}
	return account, h.loadSettings(r.Context()), true
}

// CheckoutContact sends the visitor to the messaging app with a purchase request.
func (h *Handlers) CheckoutContact(w http.ResponseWriter, r *http.Request) {
	account, settings, ok := h.checkoutTarget(w, r)
	if !ok {
		return
	}
	handoff, err := payment.ContactHandoff(settings, payment.ItemFrom(*account))
	if err != nil {
		flash(r, session.NoticeError, noticeContactMissing)
		custommw.Redirect(w, r, detailPath(account.ID))
		return
	}
	custommw.Redirect(w, r, handoff.URL)
}

// CheckoutBank shows the transfer instructions and schedules the receipt hand-off.
func (h *Handlers) CheckoutBank(w http.ResponseWriter, r *http.Request) {
	account, settings, ok := h.checkoutTarget(w, r)
	if !ok {
		return
	}
	if !payment.Resolve(settings).IBANAvailable {
		flash(r, session.NoticeError, noticeIBANMissing)
		custommw.Redirect(w, r, detailPath(account.ID))
		return
	}
	transfer, err := payment.BankTransfer(settings, payment.ItemFrom(*account))
	if err != nil {
		flash(r, session.NoticeError, noticeIBANMissing)
		custommw.Redirect(w, r, detailPath(account.ID))
		return
	}
	flash(r, session.NoticeSuccess, noticeIBANCopied)
	h.renderDetail(w, r, account, settings, &views.TransferView{
		IBAN:        transfer.IBAN,
		BankName:    transfer.BankName,
		Holder:      transfer.Holder,
		FollowUpURL: transfer.FollowUp.URL,
		DelayMillis: transfer.Delay.Milliseconds(),
	})
}

// CheckoutCard opens the hosted card payment page. Each press is a new
// attempt; nothing is retried.
func (h *Handlers) CheckoutCard(w http.ResponseWriter, r *http.Request) {
	account, settings, ok := h.checkoutTarget(w, r)
	if !ok {
		return
	}
	if !payment.Resolve(settings).CardAvailable {
		flash(r, session.NoticeError, noticeCardMissing)
		custommw.Redirect(w, r, detailPath(account.ID))
		return
	}
	started, err := payment.StartCard(r.Context(), h.backend, token(r), settings, payment.ItemFrom(*account))
	if err != nil {
		if h.rejected(w, r, err) {
			return
		}
		if errors.Is(err, payment.ErrCardNotConfigured) {
			flash(r, session.NoticeError, noticeCardMissing)
		} else {
			observability.FromContext(r.Context()).Warn("start card payment failed",
				zap.String("account_id", account.ID), zap.String("detail", backend.Detail(err)), zap.Error(err))
			flash(r, session.NoticeError, noticeCardFailed)
		}
		custommw.Redirect(w, r, detailPath(account.ID))
		return
	}
	custommw.Redirect(w, r, started.PaymentURL)
}
