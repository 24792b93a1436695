// Package flows implements the session lifecycle flows — refresh
// exchange, forced logout, cross-domain handoff, response
// classification — as pure functions over explicit dependency structs.
//
// # Architecture boundaries
//
// Flow functions hold the ordering and failure-classification logic.
// They receive every collaborator (store writes, HTTP exchange,
// navigation) as a function value and return result structs with a
// failure kind; mapping kinds to exported errors, metrics, and
// diagnostics happens in the root package.
//
// # What this package must NOT do
//
//   - Import the root sessionkit package.
//   - Hold state between calls; single-flight guards live with the caller.
//   - Decide logout policy; callers choose what a failure means.
package flows
