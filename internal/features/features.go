// Package features produces synthetic agronomic readings for a field cell.
//
// Sample is a pure function of the cell: the noise terms come from a
// generator seeded by a hash of the coordinates, so readings never depend on
// the order cells are visited in.
package features

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

type Features struct {
	NDVI        float64 `json:"ndvi"`
	Moisture    float64 `json:"moisture"`
	Nutrient    float64 `json:"nutrient"`
	Parasite    float64 `json:"parasite"`
	CanopyH     float64 `json:"canopy_h"`
	TempC       float64 `json:"temp_c"`
	HumidityPct float64 `json:"humidity_pct"`
}

func Sample(x, y int) Features {
	rng := newStream(Seed(x, y))
	fx, fy := float64(x), float64(y)

	var f Features
	f.NDVI = clip(0.5+0.3*math.Sin(fx/2000)+0.2*math.Cos(fy/1800)+0.1*rng.normal(), 0, 1)
	f.Moisture = clip(0.55+0.25*math.Sin(fy/700)-0.2*math.Cos(fx/900)+0.1*rng.normal(), 0, 1)
	f.Nutrient = clip(0.6+0.2*math.Cos(fx/1200+fy/1500)+0.1*rng.normal(), 0, 1)
	f.Parasite = clip(0.15+0.25*math.Abs(math.Sin(fx/4000)+math.Cos(fy/3500))+0.1*math.Abs(rng.normal()), 0, 1)
	f.CanopyH = clip(0.4+0.8*f.NDVI+0.1*rng.normal(), 0.1, 1.8)
	f.TempC = 26 + 6*math.Sin((fx+fy)/5000) + 1.2*rng.normal()
	f.HumidityPct = clip(55+25*math.Cos(fx/4500)+4.0*rng.normal(), 30, 95)
	return f
}

// Seed is the first 8 bytes, little endian, of sha256("x:y").
func Seed(x, y int) uint64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d", x, y)))
	return binary.LittleEndian.Uint64(sum[:8])
}

// stream is splitmix64; small, stateless apart from the counter, and
// identical on every platform.
type stream struct {
	state uint64
}

func newStream(seed uint64) *stream {
	return &stream{seed}
}

func (s *stream) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// uniform in (0, 1]
func (s *stream) uniform() float64 {
	return (float64(s.next()>>11) + 1) / (1 << 53)
}

// normal draws a standard normal value with the Box-Muller transform.
func (s *stream) normal() float64 {
	u1, u2 := s.uniform(), s.uniform()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
