package quota

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTerms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []int
	}{
		{"slash separated", "90/120/150", []int{90, 120, 150}},
		{"comma and space", "30, 60, 90", []int{30, 60, 90}},
		{"dash separated", "30-60-90", []int{30, 60, 90}},
		{"mixed separators", "30 / 60,90", []int{30, 60, 90}},
		{"duplicates preserved", "60/60/90", []int{60, 60, 90}},
		{"garbage dropped", "30/abc/90", []int{30, 90}},
		{"zero dropped", "0/30", []int{30}},
		{"all garbage", "net cash", nil},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseTerms(tc.raw))
		})
	}
}
