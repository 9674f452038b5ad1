// Package diag defines the diagnostic model shared by every conversion phase.
//
// # Purpose
//
//   - Record, per construct, how well it was converted: the outcome class
//     (Severity), a stable Code, the construct kind and the source line.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Converted < PartiallyConverted < Unrecognized < Error. The
//     maximum severity in a unit's Bag is the unit's overall status.
//   - Code – compact numeric identifier with a stable string form
//     (CVT, PRT, UNR, VER, NRM, DIA and IO families, see codes.go).
//   - Kind – the construct.Kind the diagnostic is about.
//   - Message, Primary span and Line.
//   - Notes – optional secondary spans/messages.
//
// # Emitting diagnostics
//
// Phases construct a ReportBuilder (NewReportBuilder, ReportPartial,
// ReportUnrecognized, ReportError), chain WithKind / WithNote and call Emit.
// BagReporter aggregates into a Bag, which supports sorting, deduplication
// and filtering by minimum severity.
package diag
