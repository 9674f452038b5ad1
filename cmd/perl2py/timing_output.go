package main

import (
	"fmt"
	"io"

	"perl2py/internal/driver"
)

// printTimings writes the batch phase totals, as NDJSON when asJSON is set.
func printTimings(out io.Writer, batch *driver.Batch, asJSON bool) error {
	if asJSON {
		return batch.WriteTimings(out)
	}
	_, err := fmt.Fprint(out, batch.Timing.String())
	return err
}
