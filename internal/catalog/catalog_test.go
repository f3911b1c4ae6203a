package catalog

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
)

func TestStorefrontPinsAvailable(t *testing.T) {
	t.Parallel()

	b := NewBrowser(Storefront)
	require.False(t, b.SetStatus("sold"))
	require.Equal(t, "status=available", b.Query().Encode())

	b.SelectCategory("c1")
	require.Equal(t, "category_id=c1&status=available", b.Query().Encode())
}

func TestAdminStatusFilter(t *testing.T) {
	t.Parallel()

	b := NewBrowser(Admin)
	require.Equal(t, "", b.Query().Encode())

	require.True(t, b.SetStatus("pending"))
	require.Equal(t, "status=pending", b.Query().Encode())
	require.False(t, b.SetStatus("pending"))

	require.True(t, b.SetStatus("bogus"))
	require.Equal(t, StatusAll, b.Status())
	require.Equal(t, "", b.Query().Encode())
}

func TestSearchNeedsExplicitTrigger(t *testing.T) {
	t.Parallel()

	b := NewBrowser(Storefront)
	require.False(t, b.SetDraft("elmas"))
	require.Empty(t, b.Query().Search)
	require.Equal(t, "elmas", b.Draft())

	require.True(t, b.CommitSearch())
	require.Equal(t, "elmas", b.Query().Search)

	b.SetDraft("other")
	require.Equal(t, "elmas", b.Query().Search)
}

func TestSelectAllClearsCategoryAndSearch(t *testing.T) {
	t.Parallel()

	b := NewBrowser(Storefront)
	b.SelectCategory("c1")
	b.SetDraft("x")
	b.CommitSearch()

	require.True(t, b.SelectAll())
	q := b.Query()
	require.Empty(t, q.CategoryID)
	require.Empty(t, q.Search)
	require.Empty(t, b.Draft())
	require.Equal(t, "status=available", q.Encode())
}

func TestFromValuesAndLinks(t *testing.T) {
	t.Parallel()

	b := FromValues(Admin, url.Values{"category": {"c1"}, "q": {" hesap "}, "status": {"sold"}})
	q := b.Query()
	require.Equal(t, "c1", q.CategoryID)
	require.Equal(t, "hesap", q.Search)
	require.Equal(t, StatusFilter("sold"), q.Status)

	require.Equal(t, "?category=c2&q=hesap&status=sold", b.CategoryLink("c2"))
	require.Equal(t, "?status=sold", b.AllLink())
	require.Equal(t, "?category=c1&q=hesap", b.StatusLink(StatusAll))

	store := FromValues(Storefront, url.Values{"status": {"sold"}})
	require.Equal(t, "?", store.AllLink())
}

type fetchFunc func(ctx context.Context, filter backend.AccountFilter) ([]backend.Account, error)

func (f fetchFunc) Accounts(ctx context.Context, _ string, filter backend.AccountFilter) ([]backend.Account, error) {
	return f(ctx, filter)
}

func TestListDiscardsStaleResponses(t *testing.T) {
	t.Parallel()

	release := map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}
	started := make(chan string, 2)
	fetcher := fetchFunc(func(_ context.Context, f backend.AccountFilter) ([]backend.Account, error) {
		started <- f.Search
		<-release[f.Search]
		return []backend.Account{{ID: f.Search}}, nil
	})

	var list List
	var wg sync.WaitGroup
	outcomes := make(map[string]Outcome)
	var mu sync.Mutex
	run := func(term string) {
		defer wg.Done()
		out, err := list.Fetch(context.Background(), fetcher, "", Query{Search: term})
		require.NoError(t, err)
		mu.Lock()
		outcomes[term] = out
		mu.Unlock()
	}

	wg.Add(1)
	go run("old")
	require.Equal(t, "old", <-started)
	wg.Add(1)
	go run("new")
	require.Equal(t, "new", <-started)

	// The newer fetch resolves first, then the older one.
	close(release["new"])
	require.Eventually(t, func() bool {
		_, _, ok := list.Snapshot()
		return ok
	}, time.Second, time.Millisecond)
	close(release["old"])
	wg.Wait()

	require.Equal(t, Applied, outcomes["new"])
	require.Equal(t, Stale, outcomes["old"])
	items, q, _ := list.Snapshot()
	require.Equal(t, "new", items[0].ID)
	require.Equal(t, "new", q.Search)
}

func TestListKeepsPreviousItemsOnError(t *testing.T) {
	t.Parallel()

	var list List
	ok := fetchFunc(func(context.Context, backend.AccountFilter) ([]backend.Account, error) {
		return []backend.Account{{ID: "a1"}}, nil
	})
	out, err := list.Fetch(context.Background(), ok, "", Query{})
	require.NoError(t, err)
	require.Equal(t, Applied, out)

	failing := fetchFunc(func(context.Context, backend.AccountFilter) ([]backend.Account, error) {
		return nil, errors.New("boom")
	})
	out, err = list.Fetch(context.Background(), failing, "", Query{Search: "x"})
	require.Error(t, err)
	require.Equal(t, Failed, out)

	items, q, valid := list.Snapshot()
	require.True(t, valid)
	require.Len(t, items, 1)
	require.Empty(t, q.Search)
}

func TestSequenceMonotonic(t *testing.T) {
	t.Parallel()

	var s Sequence
	a := s.Next()
	b := s.Next()
	require.Greater(t, b, a)
	require.False(t, s.Latest(a))
	require.True(t, s.Latest(b))
}

func TestRegistryEvictsIdleLists(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	first := r.List("s1")
	require.Same(t, first, r.List("s1"))
	r.List("s2")
	require.Equal(t, 2, r.Len())

	now = now.Add(2 * time.Minute)
	r.List("s3")
	require.Equal(t, 1, r.Len())
}
