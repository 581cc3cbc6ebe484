package dispatcher

import (
	"math"

	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
)

// checkPropagation walks the unmodified tail of a stoplist forward and
// reports whether shifting the first stop's arrival to newArrival keeps
// every later time window satisfiable under drive-first servicing
// (spec.md §4.2, §4.3). It never mutates remaining.
//
// The vehicle absorbs delay by waiting wherever tw_min >= eat_new — once
// that happens, no later stop can be affected and the walk stops early.
// A later stop that is already past its window (old_leeway < 0) is not
// re-flagged unless the insertion makes it strictly worse; this search
// never needs to repair a pre-existing violation, only avoid introducing
// a new one.
func checkPropagation[L loc.Loc](remaining model.Stoplist[L], newArrival float64) bool {
	if len(remaining) == 0 {
		return true
	}

	deltaCPAT := newArrival - remaining[0].EstimatedArrivalTime

	for _, stop := range remaining {
		eatOld := stop.EstimatedArrivalTime
		eatNew := eatOld + deltaCPAT

		oldLeeway := stop.TimeWindowMax - eatOld
		newLeeway := stop.TimeWindowMax - eatNew
		if newLeeway < 0 && newLeeway < oldLeeway {
			return false
		}

		if stop.TimeWindowMin >= eatNew {
			return true
		}

		departNew := math.Max(stop.TimeWindowMin, eatOld+deltaCPAT)
		departOld := math.Max(stop.TimeWindowMin, eatOld)
		deltaCPAT = departNew - departOld
	}
	return true
}
