package fuzztests

import (
	"context"
	"errors"
	"testing"

	"perl2py/internal/engine"
	"perl2py/internal/lexer"
	"perl2py/internal/matcher"
	"perl2py/internal/normalize"
	"perl2py/internal/rules"
	"perl2py/internal/source"
	"perl2py/internal/testkit"
	"perl2py/internal/token"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

type discard struct{}

func (discard) Report(string, uint32, string) {}

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(_ *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.pl", input))

		lx := lexer.New(file.Content, lexer.Options{Program: true, Reporter: discard{}})
		for {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
		}
	})
}

func FuzzMatcherTiling(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.pl", clampInput(input)))
		if err := testkit.CheckMatchInvariants(matcher.Match(file), file); err != nil {
			t.Fatalf("invariants: %v", err)
		}
	})
}

func FuzzTranslate(f *testing.F) {
	addCorpusSeeds(f)
	table := rules.Defaults()
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.pl", clampInput(input)))
		res, err := engine.Translate(context.Background(), file, table)
		if err != nil {
			if errors.Is(err, engine.ErrStructural) {
				return
			}
			t.Fatalf("translate: %v", err)
		}
		again, repairs := normalize.Run(res.Draft)
		if len(repairs) != 0 {
			t.Fatalf("normalization not idempotent: %d repairs on second run, first %q", len(repairs), repairs[0].Pattern)
		}
		if again.Render() != res.Output {
			t.Fatalf("second normalization changed output")
		}
	})
}
