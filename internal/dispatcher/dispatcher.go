// Package dispatcher implements the per-vehicle insertion algorithms of
// spec.md §4.2: pure functions that propose a minimum-cost placement of a
// new request into a stoplist, subject to time-window and capacity
// constraints.
package dispatcher

import (
	"github.com/ridepy/ridepy/internal/loc"
	"github.com/ridepy/ridepy/internal/model"
	"github.com/ridepy/ridepy/internal/space"
)

// Dispatcher proposes an insertion of req into stoplist, without mutating
// it (spec.md §9). Implementations must be pure: same inputs, same
// output, every time — the fleet's worker pool relies on this to discard
// a timed-out or panicking call's result freely; calls are never retried.
type Dispatcher[L loc.Loc] interface {
	Dispatch(req *model.Request[L], stoplist model.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) *model.InsertionResult[L]
}
