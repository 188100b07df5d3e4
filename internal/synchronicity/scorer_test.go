package synchronicity

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		distance  float64
		age       float64
		frequency float64
		want      float64
	}{
		{"base score only", 800, 30, 0.0, 0.5},
		{"very close", 80, 30, 0.0, 0.8},
		{"close", 250, 30, 0.0, 0.7},
		{"nearby", 450, 30, 0.0, 0.6},
		{"very recent", 800, 2, 0.0, 0.7},
		{"recent", 800, 10, 0.0, 0.6},
		{"strong habit", 800, 30, 0.8, 0.6},
		{"weak habit no bonus", 800, 30, 0.5, 0.5},
		{"close and recent", 250, 10, 0.0, 0.8},
		{"everything capped at one", 50, 1, 0.9, 1.0},
		{"boundary distance 100 falls to next band", 100, 30, 0.0, 0.7},
		{"boundary age 5 falls to next band", 800, 5, 0.0, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.distance, tt.age, tt.frequency)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%v, %v, %v) = %v, want %v", tt.distance, tt.age, tt.frequency, got, tt.want)
			}
		})
	}
}

func TestDedupKey(t *testing.T) {
	a := DedupKey([]string{"user-b", "user-a"}, "coffee")
	b := DedupKey([]string{"user-a", "user-b"}, "coffee")

	if a != b {
		t.Errorf("Dedup key should be order independent: %q vs %q", a, b)
	}

	if a != "coffee:user-a,user-b" {
		t.Errorf("Unexpected dedup key: %q", a)
	}

	c := DedupKey([]string{"user-a", "user-b"}, "lunch")
	if a == c {
		t.Error("Different activities should produce different dedup keys")
	}
}
