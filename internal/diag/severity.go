package diag

import (
	"fmt"
	"strings"
)

// Severity is the outcome class of a diagnostic. The order matters: a unit's
// overall status is the maximum severity among its diagnostics.
type Severity uint8

const (
	// SevConverted marks a construct translated with full fidelity.
	SevConverted Severity = iota
	// SevPartial marks a construct kept inline as an inert comment.
	SevPartial
	// SevUnrecognized marks a construct passed through untouched.
	SevUnrecognized
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevConverted:
		return "CONVERTED"
	case SevPartial:
		return "PARTIAL"
	case SevUnrecognized:
		return "UNRECOGNIZED"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower-case CLI spellings.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "converted", "info", "":
		return SevConverted, nil
	case "partial", "partially-converted", "partiallyconverted":
		return SevPartial, nil
	case "unrecognized":
		return SevUnrecognized, nil
	case "error":
		return SevError, nil
	}
	return SevConverted, fmt.Errorf("unknown severity %q", s)
}
