package driver

import (
	"time"

	"perl2py/internal/diag"
)

// EventKind tells where a unit is in the batch.
type EventKind int

const (
	// UnitQueued is sent once per unit before any work starts.
	UnitQueued EventKind = iota
	UnitStarted
	UnitDone
)

// Event describes one unit's progress.
type Event struct {
	Kind  EventKind
	Index int
	Total int
	Path  string
	// Status, Cached and Failed are meaningful for UnitDone only.
	Status  diag.Severity
	Cached  bool
	Failed  bool
	Elapsed time.Duration
}

// Observer receives progress events. It is called from worker goroutines and
// must be safe for concurrent use.
type Observer func(Event)

// ChannelObserver forwards events to ch, blocking when it is full.
func ChannelObserver(ch chan<- Event) Observer {
	return func(ev Event) { ch <- ev }
}

func (o Observer) emit(ev Event) {
	if o != nil {
		o(ev)
	}
}
