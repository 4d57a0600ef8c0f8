// Package model defines the entities the export pipeline reads from storage
// and the document it produces.
//
// Entities are explicit records: every field the pipeline reads or rewrites is
// a named Go field, and everything else a stored document carries is kept in
// an Extra map so it survives the round trip into the export unchanged.
// Presence matters for several fields (a component "has" a form reference even
// when it is empty), so optional references are pointers.
//
// Identifiers are carried as 24-character hex strings regardless of how the
// backing store represents them.
package model
