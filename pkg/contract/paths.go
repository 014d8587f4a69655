package contract

import (
	"context"
	"fmt"
	"strings"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// ResolvePath looks up a path item by its exact URL template. Placeholders
// such as {nodeID} are compared literally.
func ResolvePath(doc *pkgopenapi.Contract, template string) (*pkgopenapi.PathItem, error) {
	item, ok := doc.Path(template)
	if !ok {
		return nil, &NotFoundError{Kind: "path", Key: template, Scope: "paths"}
	}
	return item, nil
}

// ResolveOperation looks up the operation for template and method.
func ResolveOperation(doc *pkgopenapi.Contract, template, method string) (*pkgopenapi.Operation, error) {
	item, err := ResolvePath(doc, template)
	if err != nil {
		return nil, err
	}
	op, ok := item.Operation(method)
	if !ok {
		return nil, &NotFoundError{Kind: "operation", Key: strings.ToUpper(method), Scope: template}
	}
	return op, nil
}

// SiblingPrefix returns the literal prefix shared by a path's siblings: the
// template up to and including its final "/".
func SiblingPrefix(template string) string {
	idx := strings.LastIndex(template, "/")
	if idx < 0 {
		return ""
	}
	return template[:idx+1]
}

// Siblings returns the paths other than target that start with prefix, in
// document order. An empty prefix selects SiblingPrefix(target).
func Siblings(doc *pkgopenapi.Contract, target, prefix string) []string {
	if prefix == "" {
		prefix = SiblingPrefix(target)
	}
	var out []string
	for _, key := range doc.Paths.Keys() {
		if key != target && strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

// CheckOrdering verifies every sibling is declared before target. It returns
// one *OrderingError per misplaced sibling, or a *NotFoundError when target
// is missing.
func CheckOrdering(doc *pkgopenapi.Contract, target, prefix string) []error {
	targetIdx := doc.Paths.Index(target)
	if targetIdx < 0 {
		return []error{&NotFoundError{Kind: "path", Key: target, Scope: "paths"}}
	}
	var errs []error
	for _, sibling := range Siblings(doc, target, prefix) {
		if idx := doc.Paths.Index(sibling); idx > targetIdx {
			errs = append(errs, &OrderingError{Path: target, PathIndex: targetIdx, Sibling: sibling, SiblingIndex: idx})
		}
	}
	return errs
}

// OrderingExpectation asserts that Path comes after its siblings. Prefix
// overrides the derived sibling prefix; After names explicit predecessors and
// replaces the prefix scan when set.
type OrderingExpectation struct {
	Path   string
	Prefix string
	After  []string
}

func (e OrderingExpectation) Name() string {
	return "ordering " + e.Path
}

func (e OrderingExpectation) Evaluate(_ context.Context, doc *pkgopenapi.Contract) []Result {
	const id = "path.ordering"
	scope := e.Path

	targetIdx := doc.Paths.Index(e.Path)
	if targetIdx < 0 {
		return []Result{fail(id, scope, &NotFoundError{Kind: "path", Key: e.Path, Scope: "paths"})}
	}

	siblings := e.After
	if len(siblings) == 0 {
		siblings = Siblings(doc, e.Path, e.Prefix)
	}
	if len(siblings) == 0 {
		return []Result{pass(id, scope, "no sibling paths share prefix %q", prefixOrDerived(e))}
	}

	results := make([]Result, 0, len(siblings))
	for _, sibling := range siblings {
		idx := doc.Paths.Index(sibling)
		switch {
		case idx < 0:
			results = append(results, fail(id, scope, &NotFoundError{Kind: "path", Key: sibling, Scope: "paths"}))
		case idx > targetIdx:
			results = append(results, fail(id, scope, &OrderingError{Path: e.Path, PathIndex: targetIdx, Sibling: sibling, SiblingIndex: idx}))
		default:
			results = append(results, pass(id, scope, "sibling %q (index %d) precedes index %d", sibling, idx, targetIdx))
		}
	}
	return results
}

func prefixOrDerived(e OrderingExpectation) string {
	if e.Prefix != "" {
		return e.Prefix
	}
	return SiblingPrefix(e.Path)
}

// PathExpectation asserts presence (or absence) of a path and its shared
// parameters and methods.
type PathExpectation struct {
	Path          string
	Absent        bool
	Methods       []string
	AbsentMethods []string
	// Parameters lists expected path-level parameters: a "#/..." entry must
	// match a reference exactly, anything else matches a parameter name.
	Parameters []string
}

func (e PathExpectation) Name() string {
	return "path " + e.Path
}

func (e PathExpectation) Evaluate(_ context.Context, doc *pkgopenapi.Contract) []Result {
	scope := e.Path
	item, ok := doc.Path(e.Path)
	if e.Absent {
		if ok {
			return []Result{fail("path.absent", scope, &MismatchError{Scope: scope, Field: "presence", Expected: "absent", Actual: "present"})}
		}
		return []Result{pass("path.absent", scope, "path is not declared")}
	}
	if !ok {
		return []Result{fail("path.exists", scope, &NotFoundError{Kind: "path", Key: e.Path, Scope: "paths"})}
	}

	results := []Result{pass("path.exists", scope, "path is declared at index %d", doc.Paths.Index(e.Path))}
	for _, method := range e.Methods {
		if _, ok := item.Operation(method); ok {
			results = append(results, pass("path.method", scope, "%s is declared", strings.ToUpper(method)))
		} else {
			results = append(results, fail("path.method", scope, &NotFoundError{Kind: "operation", Key: strings.ToUpper(method), Scope: scope}))
		}
	}
	for _, method := range e.AbsentMethods {
		if _, ok := item.Operation(method); ok {
			results = append(results, fail("path.method-absent", scope, &MismatchError{Scope: scope, Field: strings.ToUpper(method), Expected: "absent", Actual: "present"}))
		} else {
			results = append(results, pass("path.method-absent", scope, "%s is not declared", strings.ToUpper(method)))
		}
	}
	for _, want := range e.Parameters {
		results = append(results, expectParameter("path.parameter", scope, doc, item.Parameters, want))
	}
	return results
}

func expectParameter(id, scope string, doc *pkgopenapi.Contract, params []pkgopenapi.ParameterSpec, want string) Result {
	for _, spec := range params {
		switch p := spec.(type) {
		case pkgopenapi.ParameterRef:
			if p.Ref == want {
				return pass(id, scope, "parameter reference %s is declared", want)
			}
			if resolved, ok := doc.ResolveParameter(p); ok && resolved.Name == want {
				return pass(id, scope, "parameter %q is declared via %s", want, p.Ref)
			}
		case *pkgopenapi.InlineParameter:
			if p.Name == want {
				return pass(id, scope, "parameter %q is declared inline", want)
			}
		}
	}
	return fail(id, scope, &NotFoundError{Kind: "parameter", Key: want, Scope: scope})
}

// operationScope formats "METHOD /path".
func operationScope(path, method string) string {
	return fmt.Sprintf("%s %s", strings.ToUpper(method), path)
}
