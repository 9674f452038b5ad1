// Package token defines the lexemes of the Perl dialect accepted by the
// converter: sigiled variables, barewords, quote-like operators with their
// parsed parts, punctuation, and the trivia (whitespace, comments, POD,
// here-document bodies) that surrounds them.
package token
