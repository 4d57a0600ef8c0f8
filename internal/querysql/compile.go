package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/formexport/internal/queryir"
)

// tablePattern restricts collection names; they are spliced into SQL text.
var tablePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SQLCompiler compiles queryir selects to parameterized SQL for SQLite
// document tables.
//
// Every table has the shape (id TEXT PRIMARY KEY, doc TEXT NOT NULL) where doc
// holds the JSON document. Field references become json_extract calls except
// "_id", which maps to the id column.
//
// CRITICAL: ALL queries include ORDER BY id so results are deterministic.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a select to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	if !tablePattern.MatchString(q.From) {
		return "", nil, fmt.Errorf("invalid collection name %q", q.From)
	}
	if err := queryir.Validate(q.Filter); err != nil {
		return "", nil, err
	}

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT id, doc FROM %s%s ORDER BY id ASC COLLATE BINARY",
		q.From,
		whereClause)

	return sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.IsNull:
		return fieldExpr(pred.Field) + " IS NULL", nil, nil
	case *queryir.IsNull:
		return fieldExpr(pred.Field) + " IS NULL", nil, nil
	case queryir.In:
		return c.compileIn(pred)
	case *queryir.In:
		return c.compileIn(*pred)
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "0 = 1")
	case *queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "0 = 1")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value for %q: %w", eq.Field, err)
	}
	return fieldExpr(eq.Field) + " = ?", []any{param}, nil
}

// compileIn compiles an In predicate. An empty list matches nothing.
func (c *SQLCompiler) compileIn(in queryir.In) (string, []any, error) {
	if len(in.Values) == 0 {
		return "0 = 1", nil, nil
	}

	placeholders := make([]string, len(in.Values))
	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		param, err := valueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("convert value %d for %q: %w", i, in.Field, err)
		}
		placeholders[i] = "?"
		params[i] = param
	}

	sql := fmt.Sprintf("%s IN (%s)", fieldExpr(in.Field), strings.Join(placeholders, ", "))
	return sql, params, nil
}

// compileJunction joins sub-predicates with op, parenthesized so nesting keeps
// its meaning. An empty list compiles to the identity of the operator.
func (c *SQLCompiler) compileJunction(preds []queryir.Predicate, op, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range preds {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return "(" + strings.Join(sqlParts, op) + ")", allParams, nil
}

// fieldExpr maps a document field to its SQL expression.
// Field names are validated before compilation.
func fieldExpr(field string) string {
	if field == "_id" {
		return "id"
	}
	segments := strings.Split(field, ".")
	for i, s := range segments {
		segments[i] = `"` + s + `"`
	}
	return fmt.Sprintf("json_extract(doc, '$.%s')", strings.Join(segments, "."))
}

// valueToParam converts a queryir.Value to a Go native SQL parameter.
func valueToParam(v queryir.Value) (any, error) {
	switch val := v.(type) {
	case queryir.String:
		return string(val), nil
	case queryir.ID:
		return string(val), nil
	case queryir.Int:
		return int64(val), nil
	case queryir.Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
