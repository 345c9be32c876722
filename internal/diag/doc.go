// Package diag defines the diagnostic model shared by all front-end phases
// and the error aggregator of a compilation run.
//
// # Data model
//
// Diagnostic is the central record: severity, stable numeric code, message,
// primary source.Span, optional notes and the capsule the failing file
// belongs to. A Diagnostic is a value; once it is added to a Bag it is never
// changed.
//
// # Aggregation
//
// Phases never stop the run on a bad file. They report through a Reporter,
// and BagReporter appends to the run's Bag. The Bag keeps every entry in
// insertion order, does not deduplicate, and is emptied only by Clear.
// CountingReporter sits in front of BagReporter when a phase needs to know
// whether it has already failed.
//
// Package diag does no rendering; see internal/diagfmt.
package diag
