package dispatcher

import (
	"log"
	"math"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// BruteForceDispatcher is the reference insertion search of spec.md
// §4.2: an exhaustive O(n²) scan over every (i, j) pickup/dropoff slot
// pair, gated by capacity and time-window feasibility, minimizing
// whichever cost metric Options.CostKind selects. It is the exhaustive
// baseline the other variants build on: EllipseDispatcher prunes the same
// search and StopMergingDispatcher wraps it.
type BruteForceDispatcher[L loc.Loc] struct {
	Opts Options
}

// NewBruteForceDispatcher builds a BruteForceDispatcher with the given
// options (CostKind defaults to CostTotalTravelTime if left zero-valued).
func NewBruteForceDispatcher[L loc.Loc](opts Options) *BruteForceDispatcher[L] {
	if opts.CostKind == "" {
		opts.CostKind = CostTotalTravelTime
	}
	return &BruteForceDispatcher[L]{Opts: opts}
}

func (d *BruteForceDispatcher[L]) metric(sp space.TransportSpace[L], u, v L) float64 {
	if d.Opts.CostKind == CostAbsoluteDetour {
		return sp.Dist(u, v)
	}
	return sp.Time(u, v)
}

// Dispatch implements Dispatcher. It never mutates stoplist.
func (d *BruteForceDispatcher[L]) Dispatch(req *model.Request[L], stoplist model.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) *model.InsertionResult[L] {
	n := len(stoplist)
	bestCost := math.Inf(1)
	bestI, bestJ := -1, -1

	for i := 0; i < n; i++ {
		if stoplist[i].OccupancyAfter == seatCapacity {
			if d.Opts.Debug {
				log.Printf("[dispatch] request %d: slot i=%d: SKIP capacity (%d/%d)", req.ID, i, stoplist[i].OccupancyAfter, seatCapacity)
			}
			continue // pickup here would overflow capacity
		}

		cpatPu := stoplist[i].EstimatedDepartureTime() + sp.Time(stoplist[i].Location, req.Origin)
		if cpatPu > req.PickupTW.Max {
			if d.Opts.Debug {
				log.Printf("[dispatch] request %d: slot i=%d: SKIP pickup window (cpat=%.2f > max=%.2f)", req.ID, i, cpatPu, req.PickupTW.Max)
			}
			continue
		}

		// Branch j == i: pick up and drop off between S[i] and S[i+1]
		// with no intervening stop.
		cpatDoImmediate := math.Max(cpatPu, req.PickupTW.Min) + sp.Time(req.Origin, req.Destination)
		if cpatDoImmediate <= req.DeliveryTW.Max {
			hasNext := i+1 < n
			delta := d.metric(sp, stoplist[i].Location, req.Origin) + d.metric(sp, req.Origin, req.Destination)
			if hasNext {
				nextLoc := stoplist[i+1].Location
				delta += d.metric(sp, req.Destination, nextLoc) - d.metric(sp, stoplist[i].Location, nextLoc)
			}
			if delta < bestCost {
				ok := true
				if hasNext {
					cpatNext := math.Max(cpatDoImmediate, req.DeliveryTW.Min) + sp.Time(req.Destination, stoplist[i+1].Location)
					ok = checkPropagation(stoplist[i+1:], cpatNext)
				}
				if ok {
					if d.Opts.Debug {
						log.Printf("[dispatch] request %d: slot i=j=%d: cost=%.2f (current best=%.2f) — new best", req.ID, i, delta, bestCost)
					}
					bestCost = delta
					bestI, bestJ = i, i
				} else if d.Opts.Debug {
					log.Printf("[dispatch] request %d: slot i=j=%d: SKIP propagation would violate a later window", req.ID, i)
				}
			}
		}

		// Branch j > i: pick up after S[i], drop off after some later
		// S[j]. Only reachable if there is a later stop to separate from.
		if i+1 >= n {
			continue
		}

		cpatNextPickupOnly := math.Max(cpatPu, req.PickupTW.Min) + sp.Time(req.Origin, stoplist[i+1].Location)
		if !checkPropagation(stoplist[i+1:], cpatNextPickupOnly) {
			if d.Opts.Debug {
				log.Printf("[dispatch] request %d: slot i=%d: SKIP pickup-alone propagation would violate a later window", req.ID, i)
			}
			continue
		}

		deltaPu := d.metric(sp, stoplist[i].Location, req.Origin) +
			d.metric(sp, req.Origin, stoplist[i+1].Location) -
			d.metric(sp, stoplist[i].Location, stoplist[i+1].Location)

		for j := i + 1; j < n; j++ {
			if stoplist[j].OccupancyAfter == seatCapacity {
				if d.Opts.Debug {
					log.Printf("[dispatch] request %d: slot i=%d,j=%d: BREAK capacity (%d/%d)", req.ID, i, j, stoplist[j].OccupancyAfter, seatCapacity)
				}
				break // dropoff here would overflow capacity; no later j helps
			}

			cpatDo := stoplist[j].EstimatedDepartureTime() + sp.Time(stoplist[j].Location, req.Destination)
			if cpatDo > req.DeliveryTW.Max {
				if d.Opts.Debug {
					log.Printf("[dispatch] request %d: slot i=%d,j=%d: SKIP delivery window (cpat=%.2f > max=%.2f)", req.ID, i, j, cpatDo, req.DeliveryTW.Max)
				}
				continue
			}

			hasNext := j+1 < n
			deltaDo := d.metric(sp, stoplist[j].Location, req.Destination)
			var nextLoc L
			if hasNext {
				nextLoc = stoplist[j+1].Location
				deltaDo += d.metric(sp, req.Destination, nextLoc) - d.metric(sp, stoplist[j].Location, nextLoc)
			}

			total := deltaPu + deltaDo
			if total >= bestCost {
				if d.Opts.Debug {
					log.Printf("[dispatch] request %d: slot i=%d,j=%d: SKIP cost=%.2f not better than best=%.2f", req.ID, i, j, total, bestCost)
				}
				continue
			}

			ok := true
			if hasNext {
				cpatNext := math.Max(cpatDo, req.DeliveryTW.Min) + sp.Time(req.Destination, nextLoc)
				ok = checkPropagation(stoplist[j+1:], cpatNext)
			}
			if ok {
				if d.Opts.Debug {
					log.Printf("[dispatch] request %d: slot i=%d,j=%d: cost=%.2f (current best=%.2f) — new best", req.ID, i, j, total, bestCost)
				}
				bestCost = total
				bestI, bestJ = i, j
			} else if d.Opts.Debug {
				log.Printf("[dispatch] request %d: slot i=%d,j=%d: SKIP propagation would violate a later window", req.ID, i, j)
			}
		}
	}

	if bestI == -1 {
		if d.Opts.Debug {
			log.Printf("[dispatch] request %d: no feasible slot found", req.ID)
		}
		return &model.InsertionResult[L]{MinCost: math.Inf(1)}
	}

	if d.Opts.Debug {
		log.Printf("[dispatch] request %d: best slot i=%d,j=%d cost=%.2f", req.ID, bestI, bestJ, bestCost)
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
