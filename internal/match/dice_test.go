package match

import (
	"math"
	"testing"
)

func TestDice(t *testing.T) {
	tc := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical sets", a: "so far away", b: "so far away", want: 1},
		{name: "disjoint sets", a: "highway star", b: "smoke water", want: 0},
		{name: "partial overlap", a: "smoke on the water", b: "smoke water", want: 2.0 / 3.0},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "something", b: "", want: 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Dice(Tokens(tt.a), Tokens(tt.b))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Dice(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
