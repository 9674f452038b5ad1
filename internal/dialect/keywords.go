package dialect

import "perl2py/internal/source"

type keywordSignal struct {
	Dialect Kind
	Score   int
	Reason  string
}

var keywordSignals = map[string][]keywordSignal{
	// Perl
	"my":      {{Dialect: Perl, Score: 2, Reason: "perl declaration `my`"}},
	"sub":     {{Dialect: Perl, Score: 3, Reason: "perl keyword `sub`"}},
	"foreach": {{Dialect: Perl, Score: 3, Reason: "perl keyword `foreach`"}},
	"unless":  {{Dialect: Perl, Score: 2, Reason: "perl keyword `unless`"}, {Dialect: Ruby, Score: 1, Reason: "ruby keyword `unless`"}},
	"chomp":   {{Dialect: Perl, Score: 4, Reason: "perl builtin `chomp`"}},
	"qw":      {{Dialect: Perl, Score: 4, Reason: "perl quote-words `qw`"}},
	"die":     {{Dialect: Perl, Score: 2, Reason: "perl builtin `die`"}},
	"croak":   {{Dialect: Perl, Score: 3, Reason: "perl builtin `croak`"}},
	"bless":   {{Dialect: Perl, Score: 4, Reason: "perl builtin `bless`"}},
	"eq":      {{Dialect: Perl, Score: 2, Reason: "perl string operator `eq`"}},
	"ne":      {{Dialect: Perl, Score: 2, Reason: "perl string operator `ne`"}},
	"elsif":   {{Dialect: Perl, Score: 2, Reason: "keyword `elsif`"}, {Dialect: Ruby, Score: 2, Reason: "keyword `elsif`"}},
	"strict":  {{Dialect: Perl, Score: 3, Reason: "perl pragma `strict`"}},

	// Python
	"def":    {{Dialect: Python, Score: 2, Reason: "python keyword `def`"}, {Dialect: Ruby, Score: 1, Reason: "ruby keyword `def`"}},
	"elif":   {{Dialect: Python, Score: 6, Reason: "python keyword `elif`"}},
	"None":   {{Dialect: Python, Score: 4, Reason: "python `None`"}},
	"lambda": {{Dialect: Python, Score: 3, Reason: "python keyword `lambda`"}},
	"self":   {{Dialect: Python, Score: 1, Reason: "python `self`"}},
	"import": {{Dialect: Python, Score: 3, Reason: "python keyword `import`"}},
	"True":   {{Dialect: Python, Score: 2, Reason: "python `True`"}},
	"False":  {{Dialect: Python, Score: 2, Reason: "python `False`"}},

	// Shell
	"fi":   {{Dialect: Shell, Score: 6, Reason: "shell keyword `fi`"}},
	"esac": {{Dialect: Shell, Score: 6, Reason: "shell keyword `esac`"}},
	"then": {{Dialect: Shell, Score: 4, Reason: "shell keyword `then`"}},
	"done": {{Dialect: Shell, Score: 2, Reason: "shell keyword `done`"}},
	"echo": {{Dialect: Shell, Score: 3, Reason: "shell builtin `echo`"}},

	// Ruby
	"puts":          {{Dialect: Ruby, Score: 4, Reason: "ruby `puts`"}},
	"nil":           {{Dialect: Ruby, Score: 4, Reason: "ruby `nil`"}},
	"attr_accessor": {{Dialect: Ruby, Score: 6, Reason: "ruby `attr_accessor`"}},
	"end":           {{Dialect: Ruby, Score: 1, Reason: "ruby keyword `end`"}},
}

// RecordIdent collects keyword evidence for a bareword.
func RecordIdent(e *Evidence, ident string, span source.Span) {
	if e == nil || ident == "" {
		return
	}
	for _, sig := range keywordSignals[ident] {
		e.Add(Hint{
			Dialect: sig.Dialect,
			Score:   sig.Score,
			Reason:  sig.Reason,
			Span:    span,
		})
	}
}
