package queryir

// Query is a filter applied to one collection.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = value
//   - IsNull: field is absent or null
//   - In: field matches any of a value list
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
type Predicate interface {
	predicateNode()
}

// Value is a literal compared against a document field.
//
// This is a sealed interface. There is no float variant: every comparison the
// pipeline performs is on identifiers, names or integer versions.
type Value interface {
	valueNode()
}

// String is a plain string literal.
type String string

func (String) valueNode() {}

// Int is an integer literal (sequential revision numbers).
type Int int64

func (Int) valueNode() {}

// Bool is a boolean literal.
type Bool bool

func (Bool) valueNode() {}

// ID is an object identifier in its 24-character hex form.
//
// Backends that store identifiers natively (MongoDB ObjectIDs) convert it;
// document stores that keep ids as strings compare it as a string.
type ID string

func (ID) valueNode() {}

// Select is a filtered read of a single collection.
//
// Semantics:
//
//	SELECT * FROM <from> WHERE <filter> ORDER BY id
type Select struct {
	From   string    // Collection name (e.g., "forms")
	Filter Predicate // nil = every document
}

func (Select) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Example:
//
//	Equals{Field: "project", Value: ID("5f1c...")}
type Equals struct {
	Field string
	Value Value
}

func (Equals) predicateNode() {}

// IsNull matches documents where the field is missing or null.
// Soft-delete filters use it: IsNull{Field: "deleted"}.
type IsNull struct {
	Field string
}

func (IsNull) predicateNode() {}

// In matches documents whose field equals any listed value.
// An empty Values list matches nothing.
type In struct {
	Field  string
	Values []Value
}

func (In) predicateNode() {}

// And represents a conjunction of predicates.
// An empty Predicates slice is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates.
// An empty Predicates slice is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// NotDeleted is the soft-delete filter every collection query starts from.
func NotDeleted() Predicate {
	return IsNull{Field: "deleted"}
}

// AllOf joins predicates with And, dropping nil entries and flattening the
// trivial one-element case.
func AllOf(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}

// IDs converts hex identifiers to ID values.
func IDs(ids []string) []Value {
	out := make([]Value, len(ids))
	for i, id := range ids {
		out[i] = ID(id)
	}
	return out
}
