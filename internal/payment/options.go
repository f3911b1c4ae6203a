// Package payment derives the checkout methods offered for an item from the
// site settings and builds the hand-off for each method.
package payment

import (
	"strings"

	"hesapvitrini.com/vitrine/internal/backend"
)

// Method is a checkout channel shown on the detail page.
type Method string

const (
	MethodBank Method = "bank"
	MethodCard Method = "card"
)

// Layout is how the payment section is presented.
type Layout string

const (
	// LayoutSelector shows a two-way tab selector.
	LayoutSelector Layout = "selector"
	// LayoutSingle shows the only available method without a selector.
	LayoutSingle Layout = "single"
	// LayoutContactOnly shows a static message pointing to the contact channel.
	LayoutContactOnly Layout = "contact"
)

// Options is the availability of each checkout method.
type Options struct {
	IBANAvailable bool
	CardAvailable bool
	DefaultTab    Method
}

// Flag reads a tri-state toggle: unset counts as enabled.
func Flag(v *bool) bool {
	return v == nil || *v
}

// Resolve computes the options from settings. It must run on every settings
// load; nothing is cached.
func Resolve(settings backend.Settings) Options {
	opts := Options{
		IBANAvailable: Flag(settings.EnableIBANPayment) && strings.TrimSpace(settings.IBAN) != "",
		CardAvailable: Flag(settings.EnableCardPayment) && strings.TrimSpace(settings.ShopierAPIKey) != "",
	}
	if opts.IBANAvailable {
		opts.DefaultTab = MethodBank
	} else {
		opts.DefaultTab = MethodCard
	}
	return opts
}

// AnyAvailable reports whether at least one method can be offered.
func (o Options) AnyAvailable() bool {
	return o.IBANAvailable || o.CardAvailable
}

// Layout picks the presentation for the current availability.
func (o Options) Layout() Layout {
	switch {
	case o.IBANAvailable && o.CardAvailable:
		return LayoutSelector
	case o.AnyAvailable():
		return LayoutSingle
	default:
		return LayoutContactOnly
	}
}

// Methods lists the offered methods with the default first.
func (o Options) Methods() []Method {
	var out []Method
	if o.IBANAvailable {
		out = append(out, MethodBank)
	}
	if o.CardAvailable {
		out = append(out, MethodCard)
	}
	return out
}

// Offers reports whether m is currently offered.
func (o Options) Offers(m Method) bool {
	switch m {
	case MethodBank:
		return o.IBANAvailable
	case MethodCard:
		return o.CardAvailable
	}
	return false
}
