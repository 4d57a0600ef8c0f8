// Package refmap holds the id to machine-name mappings threaded through the
// export stages, together with the queue of pinned revision references
// discovered while walking form component trees.
//
// A Map belongs to a single export run. It only grows: ids are registered at
// most once per kind and later registrations of the same id are ignored.
package refmap

import "github.com/roach88/formexport/internal/model"

// Kind names an entity namespace.
type Kind string

const (
	KindRole     Kind = "role"
	KindForm     Kind = "form"
	KindResource Kind = "resource" // Resources are forms; shares the form namespace.
	KindAction   Kind = "action"
)

// namespace maps a kind to the table it is stored under.
func (k Kind) namespace() Kind {
	if k == KindResource {
		return KindForm
	}
	return k
}

// PendingRevision is a component reference to a historical form snapshot.
// Form holds the referenced form's machine name (already resolved).
type PendingRevision struct {
	Form  string
	Token model.RevisionToken
}

// RevisionForm records an exported form that keeps revisions.
type RevisionForm struct {
	MachineName string
	Policy      model.RevisionPolicy
	Project     string
}

type table struct {
	names map[string]string
	order []string
}

// Map is the per-run reference map.
type Map struct {
	tables        map[Kind]*table
	pending       []PendingRevision
	revisionForms []RevisionForm
}

// New returns an empty Map.
func New() *Map {
	return &Map{tables: make(map[Kind]*table)}
}

func (m *Map) table(kind Kind, create bool) *table {
	ns := kind.namespace()
	t, ok := m.tables[ns]
	if !ok && create {
		t = &table{names: make(map[string]string)}
		m.tables[ns] = t
	}
	return t
}

// Register records id -> name for kind. The first registration of an id wins.
func (m *Map) Register(kind Kind, id, name string) {
	if id == "" {
		return
	}
	t := m.table(kind, true)
	if _, exists := t.names[id]; exists {
		return
	}
	t.names[id] = name
	t.order = append(t.order, id)
}

// Lookup returns the registered name for id, if any. The Everyone role id
// always resolves under KindRole.
func (m *Map) Lookup(kind Kind, id string) (string, bool) {
	if kind == KindRole && id == model.EveryoneRoleID {
		return model.EveryoneMachineName, true
	}
	t := m.table(kind, false)
	if t == nil {
		return "", false
	}
	name, ok := t.names[id]
	return name, ok
}

// Resolve returns the machine name registered for id, or id unchanged when
// nothing is registered.
func (m *Map) Resolve(kind Kind, id string) string {
	if name, ok := m.Lookup(kind, id); ok {
		return name
	}
	return id
}

// ResolvePtr resolves *ref in place. Nil and empty references are left alone.
func (m *Map) ResolvePtr(kind Kind, ref *string) {
	if ref == nil || *ref == "" {
		return
	}
	*ref = m.Resolve(kind, *ref)
}

// IDs returns the registered ids of kind in registration order.
func (m *Map) IDs(kind Kind) []string {
	t := m.table(kind, false)
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// FindID returns the first id registered under kind with the given name.
func (m *Map) FindID(kind Kind, name string) (string, bool) {
	t := m.table(kind, false)
	if t == nil {
		return "", false
	}
	for _, id := range t.order {
		if t.names[id] == name {
			return id, true
		}
	}
	return "", false
}

// Len returns the number of ids registered under kind.
func (m *Map) Len(kind Kind) int {
	t := m.table(kind, false)
	if t == nil {
		return 0
	}
	return len(t.order)
}

// EnqueueRevision queues a pinned revision reference.
func (m *Map) EnqueueRevision(form string, token model.RevisionToken) {
	m.pending = append(m.pending, PendingRevision{Form: form, Token: token})
}

// PendingRevisions returns the queued revision references in discovery order.
func (m *Map) PendingRevisions() []PendingRevision {
	return m.pending
}

// EnableRevisions records a form whose revisions are exported.
func (m *Map) EnableRevisions(rf RevisionForm) {
	m.revisionForms = append(m.revisionForms, rf)
}

// RevisionForm returns the first revision-enabled form with machineName.
func (m *Map) RevisionForm(machineName string) (RevisionForm, bool) {
	for _, rf := range m.revisionForms {
		if rf.MachineName == machineName {
			return rf, true
		}
	}
	return RevisionForm{}, false
}

// RevisionForms returns every revision-enabled form in registration order.
func (m *Map) RevisionForms() []RevisionForm {
	return m.revisionForms
}
