// Package store provides a SQLite-backed document store for the entities an
// export reads: roles, forms, actions, form revisions and submissions.
//
// Each collection is a table of (id, doc) rows where doc is the entity's JSON
// object. Filters are queryir predicates compiled by querysql into
// json_extract expressions.
//
// # Deterministic Query Results
//
// Every query ends in ORDER BY id ASC COLLATE BINARY, so repeated exports over
// unchanged data read entities in the same order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
