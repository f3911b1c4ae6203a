// Package catalog composes the catalog listing query from the category,
// search and status filters and guards list updates against stale responses.
package catalog

import (
	"net/url"
	"strings"

	"hesapvitrini.com/vitrine/internal/backend"
)

// Scope distinguishes the public storefront from the admin list.
type Scope int

const (
	// Storefront pins the status filter to available.
	Storefront Scope = iota
	// Admin lets the status filter be chosen.
	Admin
)

// StatusFilter is the admin status choice. StatusAll omits the parameter.
type StatusFilter string

const StatusAll StatusFilter = "all"

// StatusFilters lists the admin choices in display order.
func StatusFilters() []StatusFilter {
	out := []StatusFilter{StatusAll}
	for _, s := range backend.Statuses() {
		out = append(out, StatusFilter(s))
	}
	return out
}

// ParseStatusFilter maps input to a known filter; anything else is StatusAll.
func ParseStatusFilter(raw string) StatusFilter {
	if s, ok := backend.ParseStatus(raw); ok {
		return StatusFilter(s)
	}
	return StatusAll
}

// Query is the committed filter state sent to the backend.
type Query struct {
	CategoryID string
	Search     string
	Status     StatusFilter
}

// Filter converts the query into backend parameters.
func (q Query) Filter() backend.AccountFilter {
	f := backend.AccountFilter{
		CategoryID: strings.TrimSpace(q.CategoryID),
		Search:     strings.TrimSpace(q.Search),
	}
	if q.Status != "" && q.Status != StatusAll {
		f.Status = backend.Status(q.Status)
	}
	return f
}

// Encode renders the query string sent to the backend.
func (q Query) Encode() string {
	return q.Filter().Values().Encode()
}

// Query parameter names used by the pages.
const (
	ParamCategory = "category"
	ParamSearch   = "q"
	ParamStatus   = "status"
)

// Values encodes the page state for links. Status is omitted on the storefront.
func (q Query) Values(scope Scope) url.Values {
	v := url.Values{}
	if q.CategoryID != "" {
		v.Set(ParamCategory, q.CategoryID)
	}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if scope == Admin && q.Status != "" && q.Status != StatusAll {
		v.Set(ParamStatus, string(q.Status))
	}
	return v
}
