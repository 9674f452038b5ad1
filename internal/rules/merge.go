package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// OptionOverrides carries only the options a configuration sets explicitly.
type OptionOverrides struct {
	PreserveComments       *bool
	ConvertPODToDocstrings *bool
	EmitHeader             *bool
	FStringInterpolation   *bool
	StrictFallback         *bool
	Indent                 *int
}

// Overrides is a partial table. Only the keys it names replace defaults.
type Overrides struct {
	Builtins  map[string]Builtin
	Modules   map[string]string
	Operators map[string]string
	Sigils    map[string]SigilStrategy
	Options   OptionOverrides
}

var (
	ErrEmptyKey        = errors.New("empty mapping key")
	ErrSigilConflict   = errors.New("conflicting sigil strategies")
	ErrUnknownSigil    = errors.New("unknown sigil")
	ErrInvalidTemplate = errors.New("invalid builtin template")
	ErrInvalidOption   = errors.New("invalid option value")
)

// Validate rejects overrides that cannot produce a usable table.
func (o *Overrides) Validate() error {
	var errs []error
	for k, b := range o.Builtins {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("builtin_mappings: %w", ErrEmptyKey))
			continue
		}
		if strings.TrimSpace(b.Template) == "" {
			errs = append(errs, fmt.Errorf("builtin_mappings.%s: %w", k, ErrInvalidTemplate))
		}
	}
	for k := range o.Modules {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("module_mappings: %w", ErrEmptyKey))
		}
	}
	for k, v := range o.Operators {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("syntax_mappings %q: %w", k, ErrEmptyKey))
		}
	}
	for k, s := range o.Sigils {
		switch k {
		case "$", "@", "%":
		default:
			errs = append(errs, fmt.Errorf("sigil %q: %w", k, ErrUnknownSigil))
			continue
		}
		switch s.Mode {
		case SigilStrip:
		case SigilSuffix:
			if s.Suffix == "" {
				errs = append(errs, fmt.Errorf("sigil %q: suffix mode needs a suffix: %w", k, ErrSigilConflict))
			}
		default:
			errs = append(errs, fmt.Errorf("sigil %q: unknown mode %q: %w", k, s.Mode, ErrSigilConflict))
		}
	}
	if o.Options.Indent != nil && (*o.Options.Indent < 1 || *o.Options.Indent > 8) {
		errs = append(errs, fmt.Errorf("indent %d: %w", *o.Options.Indent, ErrInvalidOption))
	}
	return errors.Join(errs...)
}

// Merge returns a new table: defaults with every key named by overrides
// replaced. Defaults outside the overridden keys survive unchanged; neither
// input is modified.
func Merge(defaults *Table, overrides *Overrides) (*Table, error) {
	if defaults == nil {
		defaults = Defaults()
	}
	out := &Table{
		builtins:  defaults.Builtins(),
		modules:   defaults.Modules(),
		operators: defaults.Operators(),
		sigils:    defaults.Sigils(),
		options:   defaults.options,
	}
	if overrides == nil {
		return out, nil
	}
	if err := overrides.Validate(); err != nil {
		return nil, err
	}
	for k, v := range overrides.Builtins {
		out.builtins[k] = v.clone()
	}
	for k, v := range overrides.Modules {
		out.modules[k] = v
	}
	for k, v := range overrides.Operators {
		out.operators[k] = v
	}
	for k, v := range overrides.Sigils {
		out.sigils[k] = v
	}
	if err := checkSigilCollisions(out.sigils); err != nil {
		return nil, err
	}

	o := overrides.Options
	if o.PreserveComments != nil {
		out.options.PreserveComments = *o.PreserveComments
	}
	if o.ConvertPODToDocstrings != nil {
		out.options.ConvertPODToDocstrings = *o.ConvertPODToDocstrings
	}
	if o.EmitHeader != nil {
		out.options.EmitHeader = *o.EmitHeader
	}
	if o.FStringInterpolation != nil {
		out.options.FStringInterpolation = *o.FStringInterpolation
	}
	if o.StrictFallback != nil {
		out.options.StrictFallback = *o.StrictFallback
	}
	if o.Indent != nil {
		out.options.Indent = *o.Indent
	}
	return out, nil
}

// two suffix strategies with the same suffix would map @x and %x to one name
func checkSigilCollisions(sigils map[string]SigilStrategy) error {
	bySuffix := map[string][]string{}
	for sigil, s := range sigils {
		if s.Mode == SigilSuffix {
			bySuffix[s.Suffix] = append(bySuffix[s.Suffix], sigil)
		}
	}
	for suffix, list := range bySuffix {
		if len(list) > 1 {
			sort.Strings(list)
			return fmt.Errorf("sigils %s share suffix %q: %w", strings.Join(list, ", "), suffix, ErrSigilConflict)
		}
	}
	return nil
}
