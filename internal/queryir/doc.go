// Package queryir provides the storage-neutral filter representation used by
// the export pipeline to query its collaborators.
//
// Stages build predicates once and hand them to whichever backend serves the
// run. Backends compile them to their native form:
//
//	[export stage] → [queryir.Predicate] → [querysql  → SQLite]
//	                                     → [querybson → MongoDB]
//
// Predicate and Value are sealed interfaces using the marker method pattern.
// Only types in this package implement them, which keeps the backend
// compilers' type switches exhaustive.
//
// Field names address top-level document fields ("deleted", "form", "_vid").
// Dotted paths ("data.name") are accepted; each backend maps them to its own
// path syntax.
package queryir
