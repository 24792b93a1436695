// Package claims extracts expiry and role claims from signed bearer tokens
// without verifying their signatures.
//
// # Trust boundary
//
// Decoding here establishes NO authenticity. Trust in a token is established
// by the backend that issued and signs it; this package only reads claims so
// the client can make UI and navigation decisions (which surface to show,
// whether a refresh is due). Claims read through this package must never be
// used to authorize a sensitive server-side action.
//
// # Architecture boundaries
//
// This package owns token decoding and the pure session predicates built on
// decoded claims. Every claim access in the repository goes through
// [Decode]; no other package parses token payloads.
//
// # What this package must NOT do
//
//   - Verify signatures or reject tokens as forged.
//   - Perform I/O or touch the token store.
//   - Import the root sessionkit package.
//
// All functions are total: malformed input yields an absent result, never a
// panic.
package claims
