package diagfmt

import (
	"fmt"
	"io"

	"perl2py/internal/diag"
	"perl2py/internal/source"
)

// Short writes one line per diagnostic in the golden format.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
