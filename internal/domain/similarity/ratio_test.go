package similarity

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0},
		{"молок", "молок", 1.0},
		{"молок", "малок", 0.8},
		{"морож", "молок", 0.6},
		{"хлеб", "молок", 2.0 / 9.0},
		{"abcd", "dcba", 0.25},
		{"kitten", "sitting", 2 * 4.0 / 13.0},
	}
	for _, tc := range tests {
		got := Ratio(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{{"кокакола", "кола"}, {"abc", "xaybzc"}, {"", "x"}}
	for _, p := range pairs {
		if Ratio(p[0], p[1]) != Ratio(p[1], p[0]) {
			t.Errorf("Ratio not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestRatio_Bounds(t *testing.T) {
	for _, p := range [][2]string{{"a", "b"}, {"aaa", "a"}, {"молоко", "молоко 32"}} {
		r := Ratio(p[0], p[1])
		if r < 0 || r > 1 {
			t.Errorf("Ratio(%q, %q) = %v out of [0,1]", p[0], p[1], r)
		}
	}
}
