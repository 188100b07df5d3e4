package geo

import "testing"

func TestHaversineZero(t *testing.T) {
	d := HaversineMeters(55.676, 12.568, 55.676, 12.568)
	if d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Copenhagen city hall to Nyhavn is roughly 1.6 km
	d := HaversineMeters(55.6759, 12.5655, 55.6794, 12.5912)
	if d < 1400 || d > 1800 {
		t.Fatalf("unexpected distance: %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineMeters(55.676, 12.568, 55.680, 12.570)
	b := HaversineMeters(55.680, 12.570, 55.676, 12.568)
	if a != b {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}
