package model

import (
	"fmt"
	"math"

	"github.com/ridepy/ridepy/internal/loc"
)

// Stoplist is the ordered plan of future stops for one vehicle. Element 0
// is always the CPE (Current Position Element) — spec.md §3.
type Stoplist[L loc.Loc] []*Stop[L]

// NewStoplist creates a single-element stoplist whose CPE sits at the
// given location, serviced by a fresh internal request.
func NewStoplist[L loc.Loc](vehicleInternalRequestID int64, now float64, at L) Stoplist[L] {
	cpe := &Stop[L]{
		Location:             at,
		Request:              NewInternalRequest(vehicleInternalRequestID, now, at),
		Action:                ActionInternal,
		EstimatedArrivalTime:  now,
		OccupancyAfter:        0,
		TimeWindowMin:         0,
		TimeWindowMax:         math.Inf(1),
	}
	return Stoplist[L]{cpe}
}

// CPE returns the stoplist's Current Position Element.
func (sl Stoplist[L]) CPE() *Stop[L] {
	if len(sl) == 0 {
		panic("model: stoplist invariant breach: no CPE")
	}
	return sl[0]
}

// Clone deep-copies the stop pointers (but not the shared Request
// payloads — spec.md §9) so the dispatcher can build a candidate stoplist
// without mutating the input (spec.md §9 "Stoplist mutation").
func (sl Stoplist[L]) Clone() Stoplist[L] {
	out := make(Stoplist[L], len(sl))
	for i, s := range sl {
		out[i] = s.Clone()
	}
	return out
}

// Validate panics if any stoplist invariant from spec.md §3 is breached.
// Invariant breaches are implementation bugs (spec.md §7), never handled
// as ordinary errors.
func (sl Stoplist[L]) Validate(seatCapacity int, space interface {
	Time(u, v L) float64
}) {
	if len(sl) == 0 {
		panic("model: stoplist invariant breach: empty stoplist (no CPE)")
	}
	if sl[0].Action != ActionInternal {
		panic("model: stoplist invariant breach: element 0 is not the CPE")
	}

	pickupIdx := map[int64]int{}
	dropoffIdx := map[int64]int{}

	lastEAT := math.Inf(-1)
	for i, s := range sl {
		if s.OccupancyAfter < 0 || s.OccupancyAfter > seatCapacity {
			panic(fmt.Sprintf("model: stoplist invariant breach: occupancy %d out of [0,%d] at index %d", s.OccupancyAfter, seatCapacity, i))
		}
		if s.EstimatedArrivalTime+1e-9 < lastEAT {
			panic(fmt.Sprintf("model: stoplist invariant breach: non-monotone arrival time at index %d", i))
		}
		lastEAT = s.EstimatedArrivalTime

		if i > 0 {
			prev := sl[i-1]
			minArrival := prev.EstimatedDepartureTime() + space.Time(prev.Location, s.Location)
			if s.EstimatedArrivalTime+1e-6 < minArrival {
				panic(fmt.Sprintf("model: stoplist invariant breach: arrival at index %d (%.6f) earlier than departure+travel (%.6f)", i, s.EstimatedArrivalTime, minArrival))
			}
			wantDelta := occupancyDelta(s.Action)
			if s.OccupancyAfter != prev.OccupancyAfter+wantDelta {
				panic(fmt.Sprintf("model: stoplist invariant breach: occupancy delta at index %d", i))
			}
		}

		switch s.Action {
		case ActionPickup:
			pickupIdx[s.RequestID()] = i
		case ActionDropoff:
			dropoffIdx[s.RequestID()] = i
		}
	}

	for id, pi := range pickupIdx {
		if di, ok := dropoffIdx[id]; ok && di <= pi {
			panic(fmt.Sprintf("model: stoplist invariant breach: dropoff before pickup for request %d", id))
		}
	}
}

func occupancyDelta(a StopAction) int {
	switch a {
	case ActionPickup:
		return 1
	case ActionDropoff:
		return -1
	default:
		return 0
	}
}
