// internal/geo/distance_test.go
//
// Haversine sanity checks against well-known city pairs.
//
// Run: go test ./internal/geo -v

package geo

import (
	"math"
	"testing"
)

func TestDistanceKm_KnownPairs(t *testing.T) {
	sf := Point{Lat: 37.7749, Lon: -122.4194}
	london := Point{Lat: 51.5074, Lon: -0.1278}
	oakland := Point{Lat: 37.8044, Lon: -122.2712}
	tokyo := Point{Lat: 35.6762, Lon: 139.6503}

	cases := []struct {
		name string
		a, b Point
		want float64 // km
		tol  float64
	}{
		{"sf-london", sf, london, 8616, 30},
		{"sf-oakland", sf, oakland, 13.5, 1},
		{"tokyo-london", tokyo, london, 9559, 30},
		{"same-point", sf, sf, 0, 0.001},
	}
	for _, c := range cases {
		got := DistanceKm(c.a, c.b)
		if math.Abs(got-c.want) > c.tol {
			t.Errorf("%s: DistanceKm = %.1f, want %.1f ± %.1f", c.name, got, c.want, c.tol)
		}
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Point{Lat: 35.68, Lon: 139.69}
	b := Point{Lat: -33.87, Lon: 151.21}
	if d1, d2 := DistanceKm(a, b), DistanceKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric: %v vs %v", d1, d2)
	}
}

func TestPoint_IsZero(t *testing.T) {
	if !(Point{}).IsZero() {
		t.Fatal("zero Point not reported as zero")
	}
	if (Point{Lat: 0.1}).IsZero() {
		t.Fatal("non-zero Point reported as zero")
	}
}
