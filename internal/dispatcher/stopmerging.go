package dispatcher

import (
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// StopMergingDispatcher is an experimental variant: before running the
// brute-force search, it snaps the request's pickup and dropoff onto an
// existing stop within MergeRadius, if one exists, so that two riders can
// share a single physical stop instead of the vehicle making two nearby
// halts. This is a heuristic, not an exact reformulation of the
// insertion problem — merging trades a small amount of detour accuracy
// for fewer stops, and is not proven optimal the way BruteForceDispatcher
// is.
type StopMergingDispatcher[L loc.Loc] struct {
	Opts     Options
	fallback *BruteForceDispatcher[L]
}

// NewStopMergingDispatcher builds a StopMergingDispatcher. MergeRadius
// must be >= 0; a zero value disables merging entirely and this behaves
// exactly like BruteForceDispatcher.
func NewStopMergingDispatcher[L loc.Loc](opts Options) *StopMergingDispatcher[L] {
	if opts.CostKind == "" {
		opts.CostKind = CostTotalTravelTime
	}
	return &StopMergingDispatcher[L]{
		Opts:     opts,
		fallback: NewBruteForceDispatcher[L](opts),
	}
}

// Dispatch implements Dispatcher.
func (d *StopMergingDispatcher[L]) Dispatch(req *model.Request[L], stoplist model.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) *model.InsertionResult[L] {
	if d.Opts.MergeRadius <= 0 {
		return d.fallback.Dispatch(req, stoplist, sp, seatCapacity)
	}

	merged := *req
	merged.Origin = snapToNearbyStop(stoplist, req.Origin, sp, d.Opts.MergeRadius)
	merged.Destination = snapToNearbyStop(stoplist, req.Destination, sp, d.Opts.MergeRadius)
	return d.fallback.Dispatch(&merged, stoplist, sp, seatCapacity)
}

// snapToNearbyStop returns the location of the closest existing stop
// within radius of at, or at itself if none qualifies.
func snapToNearbyStop[L loc.Loc](stoplist model.Stoplist[L], at L, sp space.TransportSpace[L], radius float64) L {
	best := at
	bestDist := radius
	for _, s := range stoplist {
		if dist := sp.Dist(s.Location, at); dist <= bestDist {
			bestDist = dist
			best = s.Location
		}
	}
	return best
}
