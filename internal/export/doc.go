// Package export builds a portable export document from stored roles, forms,
// actions, form revisions and report configurations.
//
// Every cross-entity reference in the document is rewritten from an internal
// id to the referenced entity's machine name, so the document can be imported
// into another deployment without id collisions.
//
// ARCHITECTURE:
//
// An export run is a fixed, ordered list of stages sharing one Run:
//
//  1. roles     - registers role ids, writes the roles section
//  2. forms     - registers form ids, rewrites access rules and component trees
//  3. actions   - actions of exported forms, settings references rewritten
//  4. revisions - snapshots pinned by components found in stage 2
//  5. reports   - submissions of the "reportingui" form, when enabled
//
// Each stage reads the reference map written by the stages before it, so the
// stages run strictly in order on the calling goroutine. The first error stops
// the run and no document is returned.
//
// Behaviour is extended through hooks: ordered strategy objects passed to New.
// Each hook receives the value produced by the previous hook of the same kind.
package export
