package geo

import (
	"math"
	"math/rand"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Point
		wantKm  float64
		epsilon float64
	}{
		{
			name:    "same point",
			a:       Point{12.9716, 77.5946},
			b:       Point{12.9716, 77.5946},
			wantKm:  0,
			epsilon: 0,
		},
		{
			name:    "dispatch example",
			a:       Point{12.9719, 77.5946},
			b:       Point{12.9667, 77.5995},
			wantKm:  0.79,
			epsilon: 0.01,
		},
		{
			name:    "Bengaluru to Chennai",
			a:       Point{12.9716, 77.5946},
			b:       Point{13.0827, 80.2707},
			wantKm:  290,
			epsilon: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.epsilon {
				t.Errorf("HaversineKm() = %v, want %v ± %v", got, tt.wantKm, tt.epsilon)
			}
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		a := Point{rng.Float64()*180 - 90, rng.Float64()*360 - 180}
		b := Point{rng.Float64()*180 - 90, rng.Float64()*360 - 180}
		if d1, d2 := Haversine(a, b), Haversine(b, a); math.Abs(d1-d2) > 1e-6 {
			t.Fatalf("d(a,b)=%v d(b,a)=%v for a=%+v b=%+v", d1, d2, a, b)
		}
		if Haversine(a, a) != 0 {
			t.Fatalf("d(a,a) != 0 for %+v", a)
		}
	}
}

func TestLerp(t *testing.T) {
	a := Point{10, 70}
	b := Point{20, 80}

	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(0) = %+v", got)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("Lerp(1) = %+v", got)
	}
	if got := Lerp(a, b, 0.5); got != (Point{15, 75}) {
		t.Errorf("Lerp(0.5) = %+v", got)
	}
}

func TestRandomNearby_WithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	center := Point{12.9716, 77.5946}

	for i := 0; i < 500; i++ {
		p := RandomNearby(rng, center, 2000)
		// Degree-based sampling is approximate; allow 2% slack.
		if d := Haversine(center, p); d > 2040 {
			t.Fatalf("sample %d is %.1f m away, want <= 2000", i, d)
		}
	}
}

func BenchmarkHaversine(b *testing.B) {
	p1 := Point{12.9719, 77.5946}
	p2 := Point{12.9667, 77.5995}
	for i := 0; i < b.N; i++ {
		Haversine(p1, p2)
	}
}
