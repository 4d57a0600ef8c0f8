package queryir

import (
	"fmt"
	"regexp"
)

// fieldPattern restricts field names to identifier segments joined by dots.
// Backends splice field names into their query text, so nothing else is let
// through.
var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidationError describes the first invalid node found in a predicate.
type ValidationError struct {
	Path    string // Location within the predicate tree (e.g., "or[1].and[0]")
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "invalid predicate: " + e.Message
	}
	return fmt.Sprintf("invalid predicate at %s: %s", e.Path, e.Message)
}

// Validate checks that a predicate tree is well formed.
//
// Rules:
//  1. Field names match fieldPattern
//  2. Equals and In carry non-nil values
//  3. Only predicate types from this package appear
//
// A nil predicate is valid (no filter). Validate is a pure function.
func Validate(p Predicate) error {
	return validatePredicate(p, "")
}

func validatePredicate(p Predicate, path string) error {
	if p == nil {
		return nil
	}

	switch pred := p.(type) {
	case Equals:
		return validateEquals(pred, path)
	case *Equals:
		return validateEquals(*pred, path)
	case IsNull:
		return validateField(pred.Field, path)
	case *IsNull:
		return validateField(pred.Field, path)
	case In:
		return validateIn(pred, path)
	case *In:
		return validateIn(*pred, path)
	case And:
		return validateList("and", pred.Predicates, path)
	case *And:
		return validateList("and", pred.Predicates, path)
	case Or:
		return validateList("or", pred.Predicates, path)
	case *Or:
		return validateList("or", pred.Predicates, path)
	default:
		return &ValidationError{Path: path, Message: fmt.Sprintf("unknown predicate type %T", p)}
	}
}

func validateField(field, path string) error {
	if !fieldPattern.MatchString(field) {
		return &ValidationError{Path: path, Message: fmt.Sprintf("invalid field name %q", field)}
	}
	return nil
}

func validateEquals(eq Equals, path string) error {
	if err := validateField(eq.Field, path); err != nil {
		return err
	}
	if eq.Value == nil {
		return &ValidationError{Path: path, Message: fmt.Sprintf("field %q compared to nil value; use IsNull", eq.Field)}
	}
	return nil
}

func validateIn(in In, path string) error {
	if err := validateField(in.Field, path); err != nil {
		return err
	}
	for i, v := range in.Values {
		if v == nil {
			return &ValidationError{Path: path, Message: fmt.Sprintf("field %q has nil value at index %d", in.Field, i)}
		}
	}
	return nil
}

func validateList(op string, preds []Predicate, path string) error {
	for i, sub := range preds {
		subPath := fmt.Sprintf("%s[%d]", op, i)
		if path != "" {
			subPath = path + "." + subPath
		}
		if err := validatePredicate(sub, subPath); err != nil {
			return err
		}
	}
	return nil
}
