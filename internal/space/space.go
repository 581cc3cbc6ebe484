// Package space implements the transport space abstraction: distance,
// travel time, and on-edge interpolation for the dispatch core (spec.md
// §4.1). Every variant satisfies TransportSpace for its own Loc kind.
package space

import "github.com/ridepy/ridepy/internal/loc"

// TransportSpace supplies distances, travel times, and on-edge
// interpolation for a single kind of location.
//
// Contract (spec.md §4.1):
//   - Dist(u, v) >= 0, Dist(u, u) == 0. Dist need not be symmetric in
//     general, though every variant here is.
//   - Time(u, v) == Dist(u, v) / Velocity() for constant-velocity spaces.
//   - InterpDist(u, v, distTo) returns the location reached travelling
//     from u toward v once the remaining distance to v equals distTo,
//     plus a residual "jump" time/distance between the ideal point and
//     the returned location. Continuous spaces return the ideal point
//     itself and always a residual of 0; discrete spaces (GraphSpace)
//     return the next node not yet reached and the distance still to
//     travel from the ideal point to that node.
//   - InterpTime is the time-domain analogue of InterpDist.
//
// Unreachable locations (disconnected graph, NaN coordinates) are
// reported as +Inf distance/time, never as an error — dispatchers treat
// +Inf as infeasibility (spec.md §7).
type TransportSpace[L loc.Loc] interface {
	Dist(u, v L) float64
	Time(u, v L) float64
	InterpDist(u, v L, distTo float64) (L, float64)
	InterpTime(u, v L, timeTo float64) (L, float64)
	Velocity() float64
}
