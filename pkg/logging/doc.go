// Package logging provides the structured logging system for conductor.
//
// It is a thin layer over the standard slog package. Every entry carries
// a subsystem attribute so log lines can be filtered per component, and
// messages support printf-style formatting at the call site.
//
// Init configures the process-wide logger once at startup with a level
// and an output writer. Logging before Init falls back to stderr at info
// level, so early failures are never silent.
package logging
