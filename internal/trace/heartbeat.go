package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits KindHeartbeat events while a batch runs. A run of beats
// with no unit span closing between them points at the unit that hangs.
type Heartbeat struct {
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// StartHeartbeat beats every interval until Stop. Nil when tracing is off
// or the interval is not positive.
func StartHeartbeat(tr Tracer, every time.Duration) *Heartbeat {
	if every <= 0 || tr == nil || !tr.Enabled() {
		return nil
	}
	h := &Heartbeat{
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go h.loop(tr, every, time.Now())
	return h
}

func (h *Heartbeat) loop(tr Tracer, every time.Duration, began time.Time) {
	defer close(h.exited)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for n := 1; ; n++ {
		select {
		case <-h.done:
			return
		case now := <-tick.C:
			tr.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d at +%s", n, now.Sub(began).Round(time.Millisecond)),
			})
		}
	}
}

// Stop ends the beat loop and waits for it. Safe on nil and when repeated.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	<-h.exited
}
