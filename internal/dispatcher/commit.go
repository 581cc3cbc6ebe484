package dispatcher

import (
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// commit materializes an (i, j) insertion into a cloned stoplist: the
// pickup stop goes in right after index i, the dropoff stop goes in right
// after the (possibly shifted) index j, occupancy is updated along the
// way, and every arrival time from the pickup stop onward is recomputed
// from scratch (spec.md §4.2 "commit"). The O(n) recompute dominates
// nothing — the surrounding search is already O(n²).
func commit[L loc.Loc](stoplist model.Stoplist[L], req *model.Request[L], i, j int, sp space.TransportSpace[L]) model.Stoplist[L] {
	cloned := stoplist.Clone()

	pickup := &model.Stop[L]{
		Location:       req.Origin,
		Request:        req,
		Action:         model.ActionPickup,
		OccupancyAfter: cloned[i].OccupancyAfter + 1,
		TimeWindowMin:  req.PickupTW.Min,
		TimeWindowMax:  req.PickupTW.Max,
	}

	withPickup := make(model.Stoplist[L], 0, len(cloned)+1)
	withPickup = append(withPickup, cloned[:i+1]...)
	withPickup = append(withPickup, pickup)
	withPickup = append(withPickup, cloned[i+1:]...)

	// Stops originally at i+1..j sit one slot further along now; they
	// each carry the picked-up rider until the dropoff is inserted.
	for k := i + 2; k <= j+1; k++ {
		withPickup[k].OccupancyAfter++
	}

	dropoffIdx := j + 2 // position right after the (shifted) j'th stop
	before := withPickup[dropoffIdx-1]
	dropoff := &model.Stop[L]{
		Location:       req.Destination,
		Request:        req,
		Action:         model.ActionDropoff,
		OccupancyAfter: before.OccupancyAfter - 1,
		TimeWindowMin:  req.DeliveryTW.Min,
		TimeWindowMax:  req.DeliveryTW.Max,
	}

	out := make(model.Stoplist[L], 0, len(withPickup)+1)
	out = append(out, withPickup[:dropoffIdx]...)
	out = append(out, dropoff)
	out = append(out, withPickup[dropoffIdx:]...)

	propagateFrom(out, i+1, sp)
	return out
}

// propagateFrom recomputes EstimatedArrivalTime for out[from:] in order,
// using each stop's drive-first departure time and the space's travel
// time to the next stop. out[from-1] must already carry a correct
// arrival/departure time.
func propagateFrom[L loc.Loc](out model.Stoplist[L], from int, sp space.TransportSpace[L]) {
	for k := from; k < len(out); k++ {
		prev := out[k-1]
		out[k].EstimatedArrivalTime = prev.EstimatedDepartureTime() + sp.Time(prev.Location, out[k].Location)
	}
}
