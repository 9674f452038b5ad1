package diag

import (
	"perl2py/internal/construct"
	"perl2py/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Kind     construct.Kind
	Message  string
	Primary  source.Span
	// Line is the 1-based source line of Primary, filled by the producer so
	// consumers without a FileSet can still report positions.
	Line  uint32
	Notes []Note
}
