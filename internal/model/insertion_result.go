package model

import "github.com/ridepy/ridepy/internal/loc"

// InsertionResult is a dispatcher's quoted insertion cost and time-window
// offer for a specific request against a specific stoplist (spec.md §3,
// §6). MinCost is +Inf when no feasible insertion exists.
type InsertionResult[L loc.Loc] struct {
	NewStoplist Stoplist[L]
	MinCost     float64

	EarliestPickup  float64
	LatestPickup    float64
	EarliestDropoff float64
	LatestDropoff   float64
}

// Windows returns the four time-window bounds as an OfferedWindows
// payload, ready to attach to a RequestOffered event.
func (r *InsertionResult[L]) Windows() OfferedWindows {
	return OfferedWindows{
		EarliestPickup:  r.EarliestPickup,
		LatestPickup:    r.LatestPickup,
		EarliestDropoff: r.EarliestDropoff,
		LatestDropoff:   r.LatestDropoff,
	}
}

// Feasible reports whether this result represents an insertable offer.
func (r *InsertionResult[L]) Feasible() bool {
	return !isInf(r.MinCost)
}

func isInf(f float64) bool {
	return f > maxFiniteCost
}

// maxFiniteCost is used instead of math.IsInf so a dispatcher may use a
// very large finite sentinel interchangeably with true +Inf if it prefers
// (neither spec.md nor this implementation requires bit-exact +Inf).
const maxFiniteCost = 1e300
