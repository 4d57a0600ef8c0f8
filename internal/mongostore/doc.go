// Package mongostore reads export entities from a MongoDB database.
//
// It is the production counterpart of the SQLite store: the same collections,
// the same queryir filters (compiled by querybson) and the same ordering by
// _id. Documents are normalized on the way out so the pipeline only ever
// sees JSON values: ObjectIDs become 24-character hex strings, dates become
// RFC 3339 strings and nested documents become plain maps.
package mongostore
