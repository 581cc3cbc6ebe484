package space

import (
	"math"

	"github.com/ridepy/ridepy/internal/loc"
)

// Manhattan2D is a continuous 2D space with L1 (taxicab) distance: travel
// is along axis-aligned segments, x first then y, at a constant velocity.
//
// Complexity: O(1) for every method.
type Manhattan2D struct {
	velocity float64
}

// NewManhattan2D creates a Manhattan space with the given constant
// velocity. Panics if velocity <= 0.
func NewManhattan2D(velocity float64) *Manhattan2D {
	if velocity <= 0 {
		panic("space: Manhattan2D velocity must be > 0")
	}
	return &Manhattan2D{velocity: velocity}
}

func (s *Manhattan2D) Velocity() float64 { return s.velocity }

// Dist returns |dx| + |dy|.
func (s *Manhattan2D) Dist(u, v loc.R2Loc) float64 {
	return math.Abs(v.X-u.X) + math.Abs(v.Y-u.Y)
}

func (s *Manhattan2D) Time(u, v loc.R2Loc) float64 {
	return s.Dist(u, v) / s.velocity
}

// InterpDist returns the point reached travelling from u toward v (x leg
// first, then y leg) once the remaining distance to v equals distTo. The
// jump residual is always 0.
func (s *Manhattan2D) InterpDist(u, v loc.R2Loc, distTo float64) (loc.R2Loc, float64) {
	total := s.Dist(u, v)
	if total == 0 {
		return u, 0
	}
	travelled := clampFrac(1-distTo/total) * total
	return s.walk(u, v, travelled), 0
}

func (s *Manhattan2D) InterpTime(u, v loc.R2Loc, timeTo float64) (loc.R2Loc, float64) {
	total := s.Time(u, v)
	if total == 0 {
		return u, 0
	}
	travelledTime := clampFrac(1-timeTo/total) * total
	return s.walk(u, v, travelledTime*s.velocity), 0
}

// walk returns the point reached after travelling `travelled` distance
// along the x-leg-then-y-leg path from u to v.
func (s *Manhattan2D) walk(u, v loc.R2Loc, travelled float64) loc.R2Loc {
	xLeg := math.Abs(v.X - u.X)
	if travelled <= xLeg {
		dir := sign(v.X - u.X)
		return loc.R2Loc{X: u.X + dir*travelled, Y: u.Y}
	}
	remaining := travelled - xLeg
	dir := sign(v.Y - u.Y)
	return loc.R2Loc{X: v.X, Y: u.Y + dir*remaining}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	if f > 0 {
		return 1
	}
	return 0
}
