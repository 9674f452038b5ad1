// Package config loads user rule overrides and resolves them against the
// built-in rule table. TOML is the primary format; JSON (the historical
// format), YAML and HCL are accepted as well.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"perl2py/internal/rules"
)

const (
	// EnvConfig names the environment variable that points at a config file.
	EnvConfig = "PERL2PY_CONFIG"
	// DefaultName is looked up from the working directory upward.
	DefaultName = "perl2py.toml"
)

var (
	ErrUnknownFormat = errors.New("unknown config format")
	ErrUnknownKey    = errors.New("unknown config key")
)

// File is the on-disk shape shared by the TOML, JSON and YAML decoders.
type File struct {
	ConversionOptions ConversionOptions      `toml:"conversion_options" json:"conversion_options" yaml:"conversion_options"`
	ModuleMappings    map[string]string      `toml:"module_mappings,omitempty" json:"module_mappings,omitempty" yaml:"module_mappings,omitempty"`
	SyntaxMappings    map[string]string      `toml:"syntax_mappings,omitempty" json:"syntax_mappings,omitempty" yaml:"syntax_mappings,omitempty"`
	BuiltinMappings   map[string]BuiltinSpec `toml:"builtin_mappings,omitempty" json:"builtin_mappings,omitempty" yaml:"builtin_mappings,omitempty"`
	SigilStrategies   map[string]SigilSpec   `toml:"sigil_strategies,omitempty" json:"sigil_strategies,omitempty" yaml:"sigil_strategies,omitempty"`
}

type ConversionOptions struct {
	PreserveComments       *bool `toml:"preserve_comments,omitempty" json:"preserve_comments,omitempty" yaml:"preserve_comments,omitempty"`
	ConvertPODToDocstrings *bool `toml:"convert_pod_to_docstrings,omitempty" json:"convert_pod_to_docstrings,omitempty" yaml:"convert_pod_to_docstrings,omitempty"`
	EmitHeader             *bool `toml:"emit_header,omitempty" json:"emit_header,omitempty" yaml:"emit_header,omitempty"`
	FStringInterpolation   *bool `toml:"fstring_interpolation,omitempty" json:"fstring_interpolation,omitempty" yaml:"fstring_interpolation,omitempty"`
	StrictFallback         *bool `toml:"strict_fallback,omitempty" json:"strict_fallback,omitempty" yaml:"strict_fallback,omitempty"`
	Indent                 *int  `toml:"indent,omitempty" json:"indent,omitempty" yaml:"indent,omitempty"`
}

type BuiltinSpec struct {
	Template string   `toml:"template" json:"template" yaml:"template"`
	Nullary  string   `toml:"nullary,omitempty" json:"nullary,omitempty" yaml:"nullary,omitempty"`
	Variadic string   `toml:"variadic,omitempty" json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Imports  []string `toml:"imports,omitempty" json:"imports,omitempty" yaml:"imports,omitempty"`
	Mutates  bool     `toml:"mutates,omitempty" json:"mutates,omitempty" yaml:"mutates,omitempty"`
}

type SigilSpec struct {
	Mode   string `toml:"mode" json:"mode" yaml:"mode"`
	Suffix string `toml:"suffix,omitempty" json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// DetectFormat picks a decoder from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Load reads and decodes a config file.
func Load(path string) (*File, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatHCL {
		return decodeHCLFile(path)
	}
	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Decode(data, format, path)
}

// Decode parses config bytes in the given format. name is used in errors only.
func Decode(data []byte, format Format, name string) (*File, error) {
	var (
		f   *File
		err error
	)
	switch format {
	case FormatTOML:
		f, err = decodeTOML(data)
	case FormatJSON:
		f, err = decodeJSON(data)
	case FormatYAML:
		f, err = decodeYAML(data)
	case FormatHCL:
		f, err = decodeHCL(data, name)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Overrides converts the decoded file into a partial rule table.
func (f *File) Overrides() *rules.Overrides {
	o := &rules.Overrides{
		Modules:   f.ModuleMappings,
		Operators: f.SyntaxMappings,
		Options: rules.OptionOverrides{
			PreserveComments:       f.ConversionOptions.PreserveComments,
			ConvertPODToDocstrings: f.ConversionOptions.ConvertPODToDocstrings,
			EmitHeader:             f.ConversionOptions.EmitHeader,
			FStringInterpolation:   f.ConversionOptions.FStringInterpolation,
			StrictFallback:         f.ConversionOptions.StrictFallback,
			Indent:                 f.ConversionOptions.Indent,
		},
	}
	if len(f.BuiltinMappings) > 0 {
		o.Builtins = make(map[string]rules.Builtin, len(f.BuiltinMappings))
		for name, b := range f.BuiltinMappings {
			o.Builtins[name] = rules.Builtin{
				Template: b.Template,
				Nullary:  b.Nullary,
				Variadic: b.Variadic,
				Imports:  b.Imports,
				Mutates:  b.Mutates,
			}
		}
	}
	if len(f.SigilStrategies) > 0 {
		o.Sigils = make(map[string]rules.SigilStrategy, len(f.SigilStrategies))
		for sigil, s := range f.SigilStrategies {
			o.Sigils[sigil] = rules.SigilStrategy{Mode: rules.SigilMode(s.Mode), Suffix: s.Suffix}
		}
	}
	return o
}

// Resolve merges the file over the built-in defaults. A nil file yields the
// defaults.
func Resolve(f *File) (*rules.Table, error) {
	if f == nil {
		return rules.Defaults(), nil
	}
	t, err := rules.Merge(rules.Defaults(), f.Overrides())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return t, nil
}

// LoadTable loads path (when non-empty) and resolves it into a rule table.
func LoadTable(path string) (*rules.Table, error) {
	if path == "" {
		return rules.Defaults(), nil
	}
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Resolve(f)
}

// FromTable renders a table as a File with every key set, for dumping.
func FromTable(t *rules.Table) *File {
	o := t.Options()
	f := &File{
		ConversionOptions: ConversionOptions{
			PreserveComments:       &o.PreserveComments,
			ConvertPODToDocstrings: &o.ConvertPODToDocstrings,
			EmitHeader:             &o.EmitHeader,
			FStringInterpolation:   &o.FStringInterpolation,
			StrictFallback:         &o.StrictFallback,
			Indent:                 &o.Indent,
		},
		ModuleMappings:  t.Modules(),
		SyntaxMappings:  t.Operators(),
		BuiltinMappings: make(map[string]BuiltinSpec),
		SigilStrategies: make(map[string]SigilSpec),
	}
	for name, b := range t.Builtins() {
		f.BuiltinMappings[name] = BuiltinSpec{
			Template: b.Template,
			Nullary:  b.Nullary,
			Variadic: b.Variadic,
			Imports:  b.Imports,
			Mutates:  b.Mutates,
		}
	}
	for sigil, s := range t.Sigils() {
		f.SigilStrategies[sigil] = SigilSpec{Mode: string(s.Mode), Suffix: s.Suffix}
	}
	return f
}
