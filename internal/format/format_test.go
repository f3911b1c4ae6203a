package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
)

func mustPrice(t *testing.T, raw string) backend.Price {
	t.Helper()
	p, err := backend.ParsePrice(raw)
	require.NoError(t, err)
	return p
}

func TestPrice(t *testing.T) {
	t.Parallel()

	require.Equal(t, "15.000₺", Price(mustPrice(t, "15000"), "tr"))
	require.Equal(t, "15,000₺", Price(mustPrice(t, "15000"), "en"))
	require.Equal(t, "749,9₺", Price(mustPrice(t, "749.90"), "tr"))
	require.Equal(t, "300₺", Price(mustPrice(t, "300"), "en"))
}

func TestDate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	require.Equal(t, "15 Ocak 2025 13:00", Date(&ts, "tr"))
	require.Equal(t, "January 15, 2025 13:00", Date(&ts, "en"))
	require.Equal(t, Unknown, Date(nil, "tr"))
	require.Equal(t, Unknown, Date(&time.Time{}, "tr"))
}

func TestCount(t *testing.T) {
	t.Parallel()

	require.Equal(t, "12.345", Count(12345, "tr"))
	require.Equal(t, "42", Count(42, "en"))
}
