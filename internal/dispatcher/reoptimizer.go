package dispatcher

import (
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// Reoptimizer periodically reshuffles multiple vehicles' stoplists
// jointly, rather than inserting one request into one vehicle at a time.
// Nothing in this repository implements it — global reoptimization
// is out of scope (spec.md §3 Non-goals) — and neither VehicleState nor
// FleetState calls it; only the signature is defined here.
type Reoptimizer[L loc.Loc] interface {
	Reoptimize(stoplists map[int64]model.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) map[int64]model.Stoplist[L]
}
