package contract

import (
	"fmt"
	"strings"
)

// NotFoundError reports an expected path, operation, schema, property, or
// response key that is absent.
type NotFoundError struct {
	Kind  string
	Key   string
	Scope string
}

func (e *NotFoundError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s %q not found in %s", e.Kind, e.Key, e.Scope)
}

// MismatchError reports a value that is present but differs from the
// expectation.
type MismatchError struct {
	Scope    string
	Field    string
	Expected any
	Actual   any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s expected %s, got %s", e.Scope, e.Field, render(e.Expected), render(e.Actual))
}

// OrderingError reports a sibling path declared after the target path.
type OrderingError struct {
	Path         string
	PathIndex    int
	Sibling      string
	SiblingIndex int
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("path %q (index %d) must come after sibling %q (index %d)", e.Path, e.PathIndex, e.Sibling, e.SiblingIndex)
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return "<none>"
	case string:
		if v == "" {
			return `""`
		}
		return fmt.Sprintf("%q", v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
