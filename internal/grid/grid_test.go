package grid

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func newTestGrid(t *testing.T, cfg Config) *Grid {
	t.Helper()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	return g
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero max_x", Config{MaxX: 0, MaxY: 10, FeetPerCell: 1}, "max_x"},
		{"negative max_y", Config{MaxX: 10, MaxY: -1, FeetPerCell: 1}, "max_y"},
		{"zero cell size", Config{MaxX: 10, MaxY: 10, FeetPerCell: 0}, "feet_per_cell"},
		{"nan cell size", Config{MaxX: 10, MaxY: 10, FeetPerCell: math.NaN()}, "feet_per_cell"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			var cfgErr *InvalidConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected InvalidConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestInBounds(t *testing.T) {
	g := newTestGrid(t, Config{MaxX: 5, MaxY: 3, FeetPerCell: 1})

	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{4, 2, true},
		{-1, 0, false},
		{0, -1, false},
		{5, 0, false},
		{0, 3, false},
		{2, 1, true},
	}
	for _, tc := range cases {
		if got := g.InBounds(tc.x, tc.y); got != tc.want {
			t.Errorf("InBounds(%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestCellCenterGeoIsDeterministic(t *testing.T) {
	g := newTestGrid(t, Config{MaxX: 100, MaxY: 100, FeetPerCell: 2.5, OriginLat: 23.8103, OriginLon: 90.4125, OrientationDeg: 37})

	lat1, lon1 := g.CellCenterGeo(17, 42)
	for i := 0; i < 100; i++ {
		lat2, lon2 := g.CellCenterGeo(17, 42)
		if math.Float64bits(lat1) != math.Float64bits(lat2) || math.Float64bits(lon1) != math.Float64bits(lon2) {
			t.Fatalf("coordinates changed between calls: (%v,%v) vs (%v,%v)", lat1, lon1, lat2, lon2)
		}
	}
}

func TestCellCenterGeoUnrotatedXAxisIsEast(t *testing.T) {
	g := newTestGrid(t, Config{MaxX: 4096, MaxY: 4096, FeetPerCell: 1, OriginLat: 23.8103, OriginLon: 90.4125})

	lat0, lon0 := g.CellCenterGeo(0, 0)
	lat1, lon1 := g.CellCenterGeo(1, 0)

	if math.Abs(lat0-lat1) > 1e-12 {
		t.Fatalf("expected equal latitude, got %v and %v", lat0, lat1)
	}
	if !(lon1 > lon0) {
		t.Fatalf("expected longitude to grow eastwards, got %v then %v", lon0, lon1)
	}

	wantLat := 23.8103 + 0.5/FeetPerDegLat
	if math.Abs(lat0-wantLat) > 1e-12 {
		t.Fatalf("expected latitude %v, got %v", wantLat, lat0)
	}
}

func TestCellCenterGeoRotationIsCounterClockwise(t *testing.T) {
	g := newTestGrid(t, Config{MaxX: 10, MaxY: 10, FeetPerCell: 1, OriginLat: 10, OriginLon: 20, OrientationDeg: 90})

	lat0, lon0 := g.CellCenterGeo(0, 0)
	lat1, lon1 := g.CellCenterGeo(1, 0)

	// With a quarter turn the local x axis points north.
	if !(lat1 > lat0) {
		t.Fatalf("expected latitude to grow along x, got %v then %v", lat0, lat1)
	}
	if math.Abs(lon1-lon0) > 1e-9 {
		t.Fatalf("expected longitude to stay put along x, got %v then %v", lon0, lon1)
	}
}

func TestResolve(t *testing.T) {
	g := newTestGrid(t, Config{MaxX: 10, MaxY: 10, FeetPerCell: 1, OriginLat: 23.8103, OriginLon: 90.4125})

	target, err := g.Resolve(3, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lat, lon := g.CellCenterGeo(3, 4)
	if target.Cell != (Cell{3, 4}) || target.Geo != (Geo{lat, lon}) {
		t.Fatalf("unexpected target %+v", target)
	}

	_, err = g.Resolve(10, 0)
	var oob *OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("expected OutOfBoundsError, got %v", err)
	}
	if oob.X != 10 || oob.MaxX != 10 {
		t.Fatalf("unexpected error fields: %+v", oob)
	}
}

func TestPathSteps(t *testing.T) {
	if got := (Path{}).Steps(); got != 0 {
		t.Fatalf("empty path steps = %d", got)
	}
	if got := (Path{{0, 0}, {1, 0}, {1, 1}}).Steps(); got != 2 {
		t.Fatalf("path steps = %d, want 2", got)
	}
}

func TestDistance(t *testing.T) {
	d := Distance(Geo{Lat: 0, Lon: 0}, Geo{Lat: 1, Lon: 0})
	if math.Abs(d-111195) > 1 {
		t.Fatalf("one degree of latitude = %v m", d)
	}
	if Distance(Geo{Lat: 23.8, Lon: 90.4}, Geo{Lat: 23.8, Lon: 90.4}) != 0 {
		t.Fatal("expected zero distance for identical points")
	}
}

func TestCellCenterGeoNearPoleDoesNotUseOriginFallback(t *testing.T) {
	if math.Cos(90*(math.Pi/180)) == 0 {
		t.Fatal("cos(90deg) is exactly zero on this platform")
	}

	g, err := New(Config{MaxX: 1, MaxY: 1, FeetPerCell: 1, OriginLat: 90, OriginLon: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lat, lon := g.CellCenterGeo(0, 0)
	if !(lat > 90) {
		t.Fatalf("lat = %v, expected just past the pole", lat)
	}
	// half a cell east over a divisor of half a cell north in radians
	want := 10 - 180/math.Pi
	if math.IsNaN(lon) || math.Abs(lon-want) > 1e-3 {
		t.Fatalf("lon = %v, want about %v", lon, want)
	}
}
