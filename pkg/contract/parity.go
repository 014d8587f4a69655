package contract

import (
	"context"
	"slices"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// SchemaParity asserts two schemas declare the same property names, e.g. a
// GET response and the PUT request that replaces it. Ignore lists names
// excluded from both sides (read-only fields such as status blocks).
type SchemaParity struct {
	Left   SchemaLocator
	Right  SchemaLocator
	Ignore []string
}

func (p SchemaParity) Name() string {
	return "parity " + p.Left.String() + " / " + p.Right.String()
}

func (p SchemaParity) Evaluate(_ context.Context, doc *pkgopenapi.Contract) []Result {
	const id = "schema.parity"
	scope := p.Name()

	left, err := p.Left.Resolve(doc)
	if err != nil {
		return []Result{fail(id, scope, err)}
	}
	right, err := p.Right.Resolve(doc)
	if err != nil {
		return []Result{fail(id, scope, err)}
	}

	l := p.filter(left.Properties.Keys())
	r := p.filter(right.Properties.Keys())
	if SameSet(l, r) {
		return []Result{pass(id, scope, "both declare %s", render(sortedCopy(l)))}
	}
	return []Result{fail(id, scope, &MismatchError{
		Scope:    scope,
		Field:    "properties",
		Expected: sortedCopy(l),
		Actual:   sortedCopy(r),
	})}
}

func (p SchemaParity) filter(names []string) []string {
	return slices.DeleteFunc(names, func(name string) bool {
		return slices.Contains(p.Ignore, name)
	})
}
