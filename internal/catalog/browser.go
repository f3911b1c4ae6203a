package catalog

import (
	"net/url"
	"strings"

	"hesapvitrini.com/vitrine/internal/backend"
)

// Browser holds the filter state of one catalog view. Each mutating method
// reports whether the list must be fetched again.
type Browser struct {
	scope     Scope
	category  string
	draft     string
	committed string
	status    StatusFilter
}

// NewBrowser returns a browser with no filters applied.
func NewBrowser(scope Scope) *Browser {
	b := &Browser{scope: scope, status: StatusAll}
	if scope == Storefront {
		b.status = StatusFilter(backend.StatusAvailable)
	}
	return b
}

// FromValues restores a browser from page query parameters. A search term in
// the URL counts as committed.
func FromValues(scope Scope, values url.Values) *Browser {
	b := NewBrowser(scope)
	b.SelectCategory(values.Get(ParamCategory))
	b.SetDraft(values.Get(ParamSearch))
	b.CommitSearch()
	b.SetStatus(values.Get(ParamStatus))
	return b
}

// Scope returns the view scope.
func (b *Browser) Scope() Scope { return b.scope }

// SelectCategory narrows the list to one category. An empty id behaves like
// clearing the category only.
func (b *Browser) SelectCategory(id string) bool {
	id = strings.TrimSpace(id)
	if id == b.category {
		return false
	}
	b.category = id
	return true
}

// SelectAll clears the category and the search term, both draft and committed.
func (b *Browser) SelectAll() bool {
	changed := b.category != "" || b.committed != ""
	b.category = ""
	b.draft = ""
	b.committed = ""
	return changed
}

// SetDraft updates the search box. It never triggers a fetch.
func (b *Browser) SetDraft(term string) bool {
	b.draft = term
	return false
}

// CommitSearch applies the draft term (button press or Enter). The list is
// refreshed on every explicit trigger.
func (b *Browser) CommitSearch() bool {
	b.committed = strings.TrimSpace(b.draft)
	return true
}

// SetStatus changes the admin status filter. The storefront stays pinned to
// available.
func (b *Browser) SetStatus(raw string) bool {
	if b.scope == Storefront {
		return false
	}
	next := ParseStatusFilter(raw)
	if next == b.status {
		return false
	}
	b.status = next
	return true
}

// Draft is the current search box contents.
func (b *Browser) Draft() string { return b.draft }

// Category is the selected category id, empty for all.
func (b *Browser) Category() string { return b.category }

// Status is the effective status filter.
func (b *Browser) Status() StatusFilter { return b.status }

// Query is the committed state to fetch with.
func (b *Browser) Query() Query {
	return Query{CategoryID: b.category, Search: b.committed, Status: b.status}
}

// CategoryLink is the page query for selecting id while keeping the committed search.
func (b *Browser) CategoryLink(id string) string {
	q := b.Query()
	q.CategoryID = id
	return encodeLink(q.Values(b.scope))
}

// AllLink is the page query for the "all" choice.
func (b *Browser) AllLink() string {
	q := Query{Status: b.status}
	return encodeLink(q.Values(b.scope))
}

// StatusLink is the admin page query for choosing status s.
func (b *Browser) StatusLink(s StatusFilter) string {
	q := b.Query()
	q.Status = s
	return encodeLink(q.Values(b.scope))
}

func encodeLink(v url.Values) string {
	if len(v) == 0 {
		return "?"
	}
	return "?" + v.Encode()
}
