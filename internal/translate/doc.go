// Package translate holds the per-construct translators.
//
// Each construct kind has one pure function from a classified match to a
// Result: Python lines relative to the current block depth, the imports they
// need, diagnostic notes and the block effect (open, close, reopen, implicit
// `with` for file handles). Translators never fail the unit; anything they
// cannot render safely comes back as an inert comment plus a
// PartiallyConverted note.
//
// Perl expressions are parsed with a small Pratt parser over the Perl lexer
// and rendered straight to Python text, parenthesized by Python precedence.
package translate
