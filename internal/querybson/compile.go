// Package querybson compiles queryir predicates to MongoDB filter documents.
//
// Field names pass through unchanged: MongoDB resolves dotted paths natively
// and "_id" is a real field. ID values become ObjectIDs when they are valid
// hex, so filters match documents whose references are stored natively.
package querybson

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/formexport/internal/queryir"
)

// matchNothing is the filter of an empty disjunction. MongoDB rejects an
// empty $or array.
var matchNothing = bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{}}}}}

// Compile converts a predicate to a filter document. A nil predicate
// compiles to the empty filter, which matches every document.
func Compile(p queryir.Predicate) (bson.D, error) {
	if err := queryir.Validate(p); err != nil {
		return nil, err
	}
	if p == nil {
		return bson.D{}, nil
	}
	return compilePredicate(p)
}

func compilePredicate(p queryir.Predicate) (bson.D, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.IsNull:
		return bson.D{{Key: pred.Field, Value: nil}}, nil
	case *queryir.IsNull:
		return bson.D{{Key: pred.Field, Value: nil}}, nil
	case queryir.In:
		return compileIn(pred)
	case *queryir.In:
		return compileIn(*pred)
	case queryir.And:
		return compileJunction("$and", pred.Predicates, bson.D{})
	case *queryir.And:
		return compileJunction("$and", pred.Predicates, bson.D{})
	case queryir.Or:
		return compileJunction("$or", pred.Predicates, matchNothing)
	case *queryir.Or:
		return compileJunction("$or", pred.Predicates, matchNothing)
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq queryir.Equals) (bson.D, error) {
	v, err := Value(eq.Value)
	if err != nil {
		return nil, fmt.Errorf("convert value for %q: %w", eq.Field, err)
	}
	return bson.D{{Key: eq.Field, Value: v}}, nil
}

// compileIn compiles to {field: {$in: [...]}}. An empty list matches nothing.
func compileIn(in queryir.In) (bson.D, error) {
	values := make(bson.A, len(in.Values))
	for i, v := range in.Values {
		bv, err := Value(v)
		if err != nil {
			return nil, fmt.Errorf("convert value %d for %q: %w", i, in.Field, err)
		}
		values[i] = bv
	}
	return bson.D{{Key: in.Field, Value: bson.D{{Key: "$in", Value: values}}}}, nil
}

// compileJunction builds {op: [...]}. A single sub-predicate is returned
// unwrapped; an empty list compiles to the identity of the operator.
func compileJunction(op string, preds []queryir.Predicate, empty bson.D) (bson.D, error) {
	switch len(preds) {
	case 0:
		return empty, nil
	case 1:
		return compilePredicate(preds[0])
	}

	parts := make(bson.A, 0, len(preds))
	for _, pred := range preds {
		d, err := compilePredicate(pred)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
	}
	return bson.D{{Key: op, Value: parts}}, nil
}

// Value converts a queryir value to its BSON representation. IDs that are
// not valid ObjectID hex stay strings.
func Value(v queryir.Value) (any, error) {
	switch val := v.(type) {
	case queryir.String:
		return string(val), nil
	case queryir.ID:
		if oid, err := primitive.ObjectIDFromHex(string(val)); err == nil {
			return oid, nil
		}
		return string(val), nil
	case queryir.Int:
		return int64(val), nil
	case queryir.Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type for BSON: %T", v)
	}
}
