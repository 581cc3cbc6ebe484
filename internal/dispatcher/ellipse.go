package dispatcher

import (
	"math"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// EllipseDispatcher is BruteForceDispatcher with a cheap pre-filter: a
// pickup or dropoff is only tried between S[k] and S[k+1] if its direct
// round-trip distance through that slot stays within
// (1+MaxRelativeDetour) times d(S[k], S[k+1]) — the detour ellipse of
// spec.md §9. Slots outside the ellipse are skipped before any
// time-window arithmetic runs, trading a small chance of missing the
// true optimum for fewer Dist/Time calls on long stoplists.
type EllipseDispatcher[L loc.Loc] struct {
	Opts Options
}

// NewEllipseDispatcher builds an EllipseDispatcher. MaxRelativeDetour
// must be >= 0; a zero value only ever admits insertions exactly on the
// S[k]-S[k+1] leg.
func NewEllipseDispatcher[L loc.Loc](opts Options) *EllipseDispatcher[L] {
	if opts.CostKind == "" {
		opts.CostKind = CostTotalTravelTime
	}
	return &EllipseDispatcher[L]{Opts: opts}
}

func (d *EllipseDispatcher[L]) metric(sp space.TransportSpace[L], u, v L) float64 {
	if d.Opts.CostKind == CostAbsoluteDetour {
		return sp.Dist(u, v)
	}
	return sp.Time(u, v)
}

// inEllipse reports whether inserting at loc between leg u->v stays
// within the detour bound. A slot with no "next" stop (the tail of the
// stoplist) is never pruned: there is no leg to bound it by.
func (d *EllipseDispatcher[L]) inEllipse(sp space.TransportSpace[L], u, v, at L, hasNext bool) bool {
	if !hasNext {
		return true
	}
	direct := sp.Dist(u, v)
	through := sp.Dist(u, at) + sp.Dist(at, v)
	return through <= (1+d.Opts.MaxRelativeDetour)*direct
}

// Dispatch implements Dispatcher with the same two-index search as
// BruteForceDispatcher, skipping (i, j) slots the ellipse rules out.
func (d *EllipseDispatcher[L]) Dispatch(req *model.Request[L], stoplist model.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) *model.InsertionResult[L] {
	n := len(stoplist)
	bestCost := math.Inf(1)
	bestI, bestJ := -1, -1

	for i := 0; i < n; i++ {
		if stoplist[i].OccupancyAfter == seatCapacity {
			continue
		}

		hasNextI := i+1 < n
		if hasNextI && !d.inEllipse(sp, stoplist[i].Location, stoplist[i+1].Location, req.Origin, true) {
			continue
		}

		cpatPu := stoplist[i].EstimatedDepartureTime() + sp.Time(stoplist[i].Location, req.Origin)
		if cpatPu > req.PickupTW.Max {
			continue
		}

		cpatDoImmediate := math.Max(cpatPu, req.PickupTW.Min) + sp.Time(req.Origin, req.Destination)
		if cpatDoImmediate <= req.DeliveryTW.Max {
			delta := d.metric(sp, stoplist[i].Location, req.Origin) + d.metric(sp, req.Origin, req.Destination)
			if hasNextI {
				nextLoc := stoplist[i+1].Location
				delta += d.metric(sp, req.Destination, nextLoc) - d.metric(sp, stoplist[i].Location, nextLoc)
			}
			if delta < bestCost {
				ok := true
				if hasNextI {
					cpatNext := math.Max(cpatDoImmediate, req.DeliveryTW.Min) + sp.Time(req.Destination, stoplist[i+1].Location)
					ok = checkPropagation(stoplist[i+1:], cpatNext)
				}
				if ok {
					bestCost = delta
					bestI, bestJ = i, i
				}
			}
		}

		if !hasNextI {
			continue
		}

		cpatNextPickupOnly := math.Max(cpatPu, req.PickupTW.Min) + sp.Time(req.Origin, stoplist[i+1].Location)
		if !checkPropagation(stoplist[i+1:], cpatNextPickupOnly) {
			continue
		}

		deltaPu := d.metric(sp, stoplist[i].Location, req.Origin) +
			d.metric(sp, req.Origin, stoplist[i+1].Location) -
			d.metric(sp, stoplist[i].Location, stoplist[i+1].Location)

		for j := i + 1; j < n; j++ {
			if stoplist[j].OccupancyAfter == seatCapacity {
				break
			}

			hasNextJ := j+1 < n
			if hasNextJ && !d.inEllipse(sp, stoplist[j].Location, stoplist[j+1].Location, req.Destination, true) {
				continue
			}

			cpatDo := stoplist[j].EstimatedDepartureTime() + sp.Time(stoplist[j].Location, req.Destination)
			if cpatDo > req.DeliveryTW.Max {
				continue
			}

			deltaDo := d.metric(sp, stoplist[j].Location, req.Destination)
			var nextLoc L
			if hasNextJ {
				nextLoc = stoplist[j+1].Location
				deltaDo += d.metric(sp, req.Destination, nextLoc) - d.metric(sp, stoplist[j].Location, nextLoc)
			}

			total := deltaPu + deltaDo
			if total >= bestCost {
				continue
			}

			ok := true
			if hasNextJ {
				cpatNext := math.Max(cpatDo, req.DeliveryTW.Min) + sp.Time(req.Destination, nextLoc)
				ok = checkPropagation(stoplist[j+1:], cpatNext)
			}
			if ok {
				bestCost = total
				bestI, bestJ = i, j
			}
		}
	}

	if bestI == -1 {
		return &model.InsertionResult[L]{MinCost: math.Inf(1)}
	}

	newStoplist := commit(stoplist, req, bestI, bestJ, sp)
	return &model.InsertionResult[L]{
		NewStoplist:     newStoplist,
		MinCost:         bestCost,
		EarliestPickup:  req.PickupTW.Min,
		LatestPickup:    req.PickupTW.Max,
		EarliestDropoff: req.DeliveryTW.Min,
		LatestDropoff:   req.DeliveryTW.Max,
	}
}
