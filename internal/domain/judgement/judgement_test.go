package judgement

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{1.8, Good},
		{0.71, Good},
		{0.7, Fair},
		{0.5, Fair},
		{0.49, Bad},
		{0, Bad},
		{-1, Bad},
		{math.NaN(), Bad},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestIsRelevant(t *testing.T) {
	if IsRelevant(0.7) {
		t.Error("0.7 is not above the good threshold")
	}
	if !IsRelevant(0.7001) {
		t.Error("0.7001 is above the good threshold")
	}
}
