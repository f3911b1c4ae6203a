// Package format renders prices and dates for display.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"hesapvitrini.com/vitrine/internal/backend"
)

// CurrencySymbol is appended to every displayed price.
const CurrencySymbol = "₺"

// Unknown is shown for missing dates.
const Unknown = "Bilinmiyor"

var istanbul = loadIstanbul()

func loadIstanbul() *time.Location {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		return time.FixedZone("TRT", 3*60*60)
	}
	return loc
}

// Price renders an amount with locale grouping, up to two fraction digits and
// the lira sign: "15.000₺" in Turkish, "15,000₺" in English.
func Price(p backend.Price, lang string) string {
	printer := message.NewPrinter(tag(lang))
	value := number.Decimal(p.InexactFloat64(), number.MaxFractionDigits(2))
	return printer.Sprint(value) + CurrencySymbol
}

var trMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// Date renders a long date with time in Istanbul local time, e.g.
// "15 Ocak 2025 13:00". A zero or nil time renders as Unknown.
func Date(t *time.Time, lang string) string {
	if t == nil || t.IsZero() {
		if lang == "en" {
			return "Unknown"
		}
		return Unknown
	}
	local := t.In(istanbul)
	if lang == "en" {
		return local.Format("January 2, 2006 15:04")
	}
	return fmt.Sprintf("%d %s %d %02d:%02d", local.Day(), trMonths[local.Month()-1], local.Year(), local.Hour(), local.Minute())
}

// Count renders an integer with locale grouping.
func Count(n int, lang string) string {
	return message.NewPrinter(tag(lang)).Sprint(number.Decimal(n))
}

func tag(lang string) language.Tag {
	if lang == "en" {
		return language.English
	}
	return language.Turkish
}
