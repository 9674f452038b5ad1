package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclFile is the HCL spelling of File: options and per-builtin / per-sigil
// settings are labelled blocks, plain mappings are map attributes.
//
//	conversion_options {
//	  emit_header = false
//	}
//	module_mappings = { "Data::Dumper" = "import pprint" }
//	builtin "length" {
//	  template = "len({0})"
//	}
//	sigil "@" {
//	  mode   = "suffix"
//	  suffix = "_list"
//	}
type hclFile struct {
	Options        *hclOptions       `hcl:"conversion_options,block"`
	ModuleMappings map[string]string `hcl:"module_mappings,optional"`
	SyntaxMappings map[string]string `hcl:"syntax_mappings,optional"`
	Builtins       []hclBuiltin      `hcl:"builtin,block"`
	Sigils         []hclSigil        `hcl:"sigil,block"`
}

type hclOptions struct {
	PreserveComments       *bool `hcl:"preserve_comments,optional"`
	ConvertPODToDocstrings *bool `hcl:"convert_pod_to_docstrings,optional"`
	EmitHeader             *bool `hcl:"emit_header,optional"`
	FStringInterpolation   *bool `hcl:"fstring_interpolation,optional"`
	StrictFallback         *bool `hcl:"strict_fallback,optional"`
	Indent                 *int  `hcl:"indent,optional"`
}

type hclBuiltin struct {
	Name     string   `hcl:"name,label"`
	Template string   `hcl:"template"`
	Nullary  string   `hcl:"nullary,optional"`
	Variadic string   `hcl:"variadic,optional"`
	Imports  []string `hcl:"imports,optional"`
	Mutates  bool     `hcl:"mutates,optional"`
}

type hclSigil struct {
	Sigil  string `hcl:"sigil,label"`
	Mode   string `hcl:"mode"`
	Suffix string `hcl:"suffix,optional"`
}

func decodeHCLFile(path string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}
	return decodeHCLBody(file, path)
}

func decodeHCL(data []byte, name string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeHCLBody(file, name)
}

func decodeHCLBody(file *hcl.File, name string) (*File, error) {
	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", name, diags.Error())
	}

	f := &File{
		ModuleMappings: raw.ModuleMappings,
		SyntaxMappings: raw.SyntaxMappings,
	}
	if raw.Options != nil {
		f.ConversionOptions = ConversionOptions{
			PreserveComments:       raw.Options.PreserveComments,
			ConvertPODToDocstrings: raw.Options.ConvertPODToDocstrings,
			EmitHeader:             raw.Options.EmitHeader,
			FStringInterpolation:   raw.Options.FStringInterpolation,
			StrictFallback:         raw.Options.StrictFallback,
			Indent:                 raw.Options.Indent,
		}
	}
	if len(raw.Builtins) > 0 {
		f.BuiltinMappings = make(map[string]BuiltinSpec, len(raw.Builtins))
		for _, b := range raw.Builtins {
			f.BuiltinMappings[b.Name] = BuiltinSpec{
				Template: b.Template,
				Nullary:  b.Nullary,
				Variadic: b.Variadic,
				Imports:  b.Imports,
				Mutates:  b.Mutates,
			}
		}
	}
	if len(raw.Sigils) > 0 {
		f.SigilStrategies = make(map[string]SigilSpec, len(raw.Sigils))
		for _, s := range raw.Sigils {
			f.SigilStrategies[s.Sigil] = SigilSpec{Mode: s.Mode, Suffix: s.Suffix}
		}
	}
	return f, nil
}
