package driver

import (
	"encoding/json"
	"io"

	"perl2py/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// WriteTimings writes one JSON object per converted unit followed by the
// batch total ("kind": "unit" / "batch"). Cached units have no timings and
// are skipped.
func (b *Batch) WriteTimings(w io.Writer) error {
	enc := json.NewEncoder(w)
	for i := range b.Units {
		u := &b.Units[i]
		if len(u.Timing.Phases) == 0 {
			continue
		}
		if err := enc.Encode(timingPayload{Kind: "unit", Path: u.Input.Path, TotalMS: u.Timing.TotalMS, Phases: u.Timing.Phases}); err != nil {
			return err
		}
	}
	return enc.Encode(timingPayload{Kind: "batch", TotalMS: b.Timing.TotalMS, Phases: b.Timing.Phases})
}
