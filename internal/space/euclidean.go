package space

import (
	"math"

	"github.com/ridepy/ridepy/internal/loc"
)

// Euclidean2D is a continuous 2D space with straight-line distance and a
// constant travel velocity.
//
// Complexity: O(1) for every method.
type Euclidean2D struct {
	velocity float64 // distance units per time unit; must be > 0.
}

// NewEuclidean2D creates a Euclidean space with the given constant
// velocity. Panics if velocity <= 0 (spec.md §7: configuration failure is
// rejected at construction).
func NewEuclidean2D(velocity float64) *Euclidean2D {
	if velocity <= 0 {
		panic("space: Euclidean2D velocity must be > 0")
	}
	return &Euclidean2D{velocity: velocity}
}

func (s *Euclidean2D) Velocity() float64 { return s.velocity }

// Dist returns the straight-line distance between u and v.
func (s *Euclidean2D) Dist(u, v loc.R2Loc) float64 {
	dx := v.X - u.X
	dy := v.Y - u.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Time returns Dist(u, v) / Velocity().
func (s *Euclidean2D) Time(u, v loc.R2Loc) float64 {
	return s.Dist(u, v) / s.velocity
}

// InterpDist returns the point on segment u->v whose remaining distance to
// v equals distTo. The jump residual is always 0 for a continuous space.
func (s *Euclidean2D) InterpDist(u, v loc.R2Loc, distTo float64) (loc.R2Loc, float64) {
	total := s.Dist(u, v)
	if total == 0 {
		return u, 0
	}
	frac := clampFrac(1 - distTo/total)
	return loc.R2Loc{
		X: u.X + frac*(v.X-u.X),
		Y: u.Y + frac*(v.Y-u.Y),
	}, 0
}

// InterpTime is the time-domain analogue of InterpDist.
func (s *Euclidean2D) InterpTime(u, v loc.R2Loc, timeTo float64) (loc.R2Loc, float64) {
	total := s.Time(u, v)
	if total == 0 {
		return u, 0
	}
	frac := clampFrac(1 - timeTo/total)
	return loc.R2Loc{
		X: u.X + frac*(v.X-u.X),
		Y: u.Y + frac*(v.Y-u.Y),
	}, 0
}

// clampFrac keeps an interpolation fraction within [0, 1], guarding
// against floating point overshoot at the segment endpoints.
func clampFrac(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
