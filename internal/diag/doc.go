// Package diag defines the canonical diagnostic codes (RWD-series)
// emitted by the rewrite pipeline, and the reporter that collects them.
//
// Every soft failure of the pipeline (a cast it cannot express, an
// expression whose IR-L shape does not match expectations, a conflicting
// origin write) is recorded as a report carrying a stable code, the
// phase that produced it, a source span and a message. The session
// returns the collected reports next to its output, so every dropped
// rewrite opportunity is accounted for.
//
// Code numbering scheme:
//
//	000–099  annotation: casts and rewrite-operation emission
//	100–149  unlowering: structural matching and origin recording
//	150–199  lifting and application
//
// Fatal failures are not reports: they abort the session through an
// unsupported-construct error.
package diag
