package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		want     string
		positive bool
		wantErr  bool
	}{
		{in: "150", want: "150", positive: true},
		{in: " 99.90 ", want: "99.9", positive: true},
		{in: "12,5", want: "12.5", positive: true},
		{in: "0", want: "0"},
		{in: "-4", want: "-4"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range cases {
		p, err := ParsePrice(tc.in)
		if tc.wantErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, p.String(), tc.in)
		require.Equal(t, tc.positive, p.Positive(), tc.in)
	}
}

func TestPriceJSONIsBareNumber(t *testing.T) {
	t.Parallel()

	p, err := ParsePrice("1499.99")
	require.NoError(t, err)
	raw, err := json.Marshal(struct {
		Price Price `json:"price"`
	}{Price: p})
	require.NoError(t, err)
	require.JSONEq(t, `{"price":1499.99}`, string(raw))

	var decoded struct {
		Price Price `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &decoded))
	require.True(t, decoded.Price.IsZero())
}
