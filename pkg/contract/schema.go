package contract

import (
	"context"
	"slices"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// SchemaExpectation asserts structural properties of one schema. Each
// populated field yields its own results.
type SchemaExpectation struct {
	Schema     SchemaLocator
	Type       string
	Required   []string
	Properties []PropertyExpectation
	// Present and Absent check property keys only; a key declared with an
	// empty definition counts as present.
	Present []string
	Absent  []string
}

// PropertyExpectation describes one property. Empty fields are not checked.
type PropertyExpectation struct {
	Name   string
	Type   string
	Format string
	// Enum is compared as a set.
	Enum []string
	Ref  string
}

func (e SchemaExpectation) Name() string {
	return e.Schema.String()
}

func (e SchemaExpectation) Evaluate(_ context.Context, doc *pkgopenapi.Contract) []Result {
	scope := e.Schema.String()
	schema, err := e.Schema.Resolve(doc)
	if err != nil {
		return []Result{fail("schema.exists", scope, err)}
	}

	var results []Result
	if e.Type != "" {
		results = append(results, expectEqual("schema.type", scope, "type", e.Type, schema.Type))
	}
	for _, name := range e.Required {
		if schema.IsRequired(name) {
			results = append(results, pass("schema.required", scope, "%q is required", name))
		} else {
			results = append(results, fail("schema.required", scope, &MismatchError{Scope: scope, Field: "required", Expected: name, Actual: schema.Required}))
		}
	}
	for _, prop := range e.Properties {
		results = append(results, evaluateProperty(doc, schema, scope, prop)...)
	}
	for _, name := range e.Present {
		spec, ok := schema.Property(name)
		switch {
		case !ok:
			results = append(results, fail("schema.present", scope, &NotFoundError{Kind: "property", Key: name, Scope: scope}))
		case isEmptySchema(spec):
			results = append(results, pass("schema.present", scope, "property %q is present (empty definition)", name))
		default:
			results = append(results, pass("schema.present", scope, "property %q is present", name))
		}
	}
	for _, name := range e.Absent {
		spec, ok := schema.Property(name)
		switch {
		case !ok:
			results = append(results, pass("schema.absent", scope, "property %q is absent", name))
		case isEmptySchema(spec):
			results = append(results, fail("schema.absent", scope, &MismatchError{Scope: scope, Field: "property " + name, Expected: "absent", Actual: "present with empty definition"}))
		default:
			results = append(results, fail("schema.absent", scope, &MismatchError{Scope: scope, Field: "property " + name, Expected: "absent", Actual: "present"}))
		}
	}
	return results
}

func evaluateProperty(doc *pkgopenapi.Contract, schema *pkgopenapi.Schema, scope string, want PropertyExpectation) []Result {
	propScope := scope + "." + want.Name
	spec, ok := schema.Property(want.Name)
	if !ok {
		return []Result{fail("schema.property", scope, &NotFoundError{Kind: "property", Key: want.Name, Scope: scope})}
	}

	var results []Result
	if want.Ref != "" {
		results = append(results, expectEqual("schema.property.ref", propScope, "$ref", want.Ref, pkgopenapi.RefOf(spec)))
	}
	if want.Type == "" && want.Format == "" && len(want.Enum) == 0 {
		if len(results) == 0 {
			results = append(results, pass("schema.property", propScope, "property is declared"))
		}
		return results
	}

	resolved, ok := doc.ResolveSchema(spec)
	if !ok {
		return append(results, fail("schema.property", propScope, &NotFoundError{Kind: "schema", Key: pkgopenapi.RefOf(spec), Scope: propScope}))
	}
	if want.Type != "" {
		results = append(results, expectEqual("schema.property.type", propScope, "type", want.Type, resolved.Type))
	}
	if want.Format != "" {
		results = append(results, expectEqual("schema.property.format", propScope, "format", want.Format, resolved.Format))
	}
	if len(want.Enum) > 0 {
		if SameSet(want.Enum, resolved.Enum) {
			results = append(results, pass("schema.property.enum", propScope, "enum matches %s", render(sortedCopy(want.Enum))))
		} else {
			results = append(results, fail("schema.property.enum", propScope, &MismatchError{Scope: propScope, Field: "enum", Expected: sortedCopy(want.Enum), Actual: sortedCopy(resolved.Enum)}))
		}
	}
	return results
}

func expectEqual(id, scope, field, want, got string) Result {
	if want == got {
		return pass(id, scope, "%s is %s", field, render(got))
	}
	return fail(id, scope, &MismatchError{Scope: scope, Field: field, Expected: want, Actual: got})
}

// SameSet compares two string collections ignoring order and duplicates.
func SameSet(a, b []string) bool {
	return slices.Equal(uniqueSorted(a), uniqueSorted(b))
}

func uniqueSorted(in []string) []string {
	return slices.Compact(sortedCopy(in))
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

// isEmptySchema reports an inline schema with no constraints at all.
func isEmptySchema(spec pkgopenapi.SchemaSpec) bool {
	s, ok := spec.(*pkgopenapi.Schema)
	if !ok {
		return false
	}
	return s.Type == "" && s.Format == "" && s.Properties.Len() == 0 && len(s.Enum) == 0 &&
		s.Items == nil && len(s.AllOf) == 0 && len(s.OneOf) == 0 && len(s.AnyOf) == 0 && !s.HasExample
}
