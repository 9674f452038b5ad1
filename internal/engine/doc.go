// Package engine drives the conversion of one Perl unit into Python.
//
// Translate runs the matcher, checks that its matches tile the unit, hands
// every match to its translator in source order, and assembles the results
// into a draft buffer: a block stack turns opener/closer effects into
// indentation, imports are collected into one sorted block under the
// generated header. The draft then goes through the normalization pass and is
// rendered.
//
// A unit is converted synchronously and without side effects. TranslateAll
// runs independent units on a bounded worker pool sharing one rule table.
package engine
