// Package audit defines the diagnostic event model and sinks used by the
// session layer's dispatcher. Events describe credential state for support
// triage and must never contain raw token values.
package audit
