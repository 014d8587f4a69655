package contract

import (
	"context"
	"fmt"
	"strconv"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// Integrity returns a check covering the document invariants every contract
// must hold regardless of expectations: references resolve, status keys are
// valid, required properties are declared, and operationIds are unique.
func Integrity() Check {
	return CheckFunc{Label: "integrity", Fn: func(_ context.Context, doc *pkgopenapi.Contract) []Result {
		var results []Result
		results = append(results, checkRefs(doc)...)
		results = append(results, checkStatusCodes(doc)...)
		results = append(results, checkRequired(doc)...)
		results = append(results, checkOperationIDs(doc)...)
		return results
	}}
}

func checkRefs(doc *pkgopenapi.Contract) []Result {
	const id = "integrity.ref"
	var results []Result
	for _, site := range doc.Refs {
		if !doc.Resolves(site.Ref) {
			scope := fmt.Sprintf("%s (line %d)", site.Location, site.Line)
			results = append(results, fail(id, scope, &NotFoundError{Kind: "reference target", Key: site.Ref, Scope: "components"}))
		}
	}
	if len(results) == 0 {
		results = append(results, pass(id, "document", "%d reference(s) resolve", len(doc.Refs)))
	}
	return results
}

// ValidStatusKey reports whether key is a three-digit code in 100-599, a
// range such as "2XX", or "default".
func ValidStatusKey(key string) bool {
	if key == "default" {
		return true
	}
	if len(key) != 3 {
		return false
	}
	if key[1:] == "XX" {
		return key[0] >= '1' && key[0] <= '5'
	}
	code, err := strconv.Atoi(key)
	if err != nil {
		return false
	}
	return code >= 100 && code <= 599
}

func checkStatusCodes(doc *pkgopenapi.Contract) []Result {
	const id = "integrity.status"
	var results []Result
	count := 0
	for op := range doc.Operations() {
		for _, status := range op.Responses.Keys() {
			count++
			if !ValidStatusKey(status) {
				scope := operationScope(op.Path, op.Method)
				results = append(results, fail(id, scope, &MismatchError{Scope: scope, Field: "response status", Expected: "100-599, 1XX-5XX or default", Actual: status}))
			}
		}
	}
	if len(results) == 0 {
		results = append(results, pass(id, "document", "%d response status key(s) are valid", count))
	}
	return results
}

func checkRequired(doc *pkgopenapi.Contract) []Result {
	const id = "integrity.required"
	v := requiredVisitor{doc: doc, seen: make(map[*pkgopenapi.Schema]bool)}

	for name, schema := range doc.Components.Schemas.All() {
		v.visit("components.schemas."+name, schema)
	}
	for name, param := range doc.Components.Parameters.All() {
		v.visit("components.parameters."+name, param.Schema)
	}
	for name, resp := range doc.Components.Responses.All() {
		v.content("components.responses."+name, resp.Content)
	}
	for name, body := range doc.Components.RequestBodies.All() {
		v.content("components.requestBodies."+name, &body.Content)
	}
	for op := range doc.Operations() {
		scope := operationScope(op.Path, op.Method)
		for _, p := range op.Parameters {
			if inline, ok := p.(*pkgopenapi.InlineParameter); ok {
				v.visit(scope+" parameter "+inline.Name, inline.Schema)
			}
		}
		if op.RequestBody != nil {
			v.content(scope+" request", &op.RequestBody.Content)
		}
		for status, resp := range op.Responses.All() {
			v.content(scope+" "+status, resp.Content)
		}
	}

	if len(v.results) == 0 {
		return []Result{pass(id, "document", "%d schema(s) declare every required property", len(v.seen))}
	}
	return v.results
}

type requiredVisitor struct {
	doc     *pkgopenapi.Contract
	seen    map[*pkgopenapi.Schema]bool
	results []Result
}

func (v *requiredVisitor) content(scope string, content *pkgopenapi.OrderedMap[*pkgopenapi.MediaType]) {
	for name, mt := range content.All() {
		v.visit(scope+" "+name, mt.Schema)
	}
}

func (v *requiredVisitor) visit(scope string, spec pkgopenapi.SchemaSpec) {
	schema, ok := spec.(*pkgopenapi.Schema)
	if !ok || schema == nil || v.seen[schema] {
		return
	}
	v.seen[schema] = true

	declared := v.properties(schema, 0)
	for _, name := range schema.Required {
		if !declared[name] {
			v.results = append(v.results, fail("integrity.required", scope, &NotFoundError{Kind: "required property", Key: name, Scope: scope + " properties"}))
		}
	}

	for name, prop := range schema.Properties.All() {
		v.visit(scope+"."+name, prop)
	}
	if schema.Items != nil {
		v.visit(scope+"[]", schema.Items)
	}
	for i, group := range [][]pkgopenapi.SchemaSpec{schema.AllOf, schema.OneOf, schema.AnyOf} {
		label := [...]string{"allOf", "oneOf", "anyOf"}[i]
		for j, member := range group {
			v.visit(fmt.Sprintf("%s.%s[%d]", scope, label, j), member)
		}
	}
}

// properties collects the names declared by schema and its allOf members.
func (v *requiredVisitor) properties(schema *pkgopenapi.Schema, depth int) map[string]bool {
	out := make(map[string]bool, schema.Properties.Len())
	for _, name := range schema.Properties.Keys() {
		out[name] = true
	}
	if depth > 8 {
		return out
	}
	for _, member := range schema.AllOf {
		resolved, ok := v.doc.ResolveSchema(member)
		if !ok {
			continue
		}
		for name := range v.properties(resolved, depth+1) {
			out[name] = true
		}
	}
	return out
}

func checkOperationIDs(doc *pkgopenapi.Contract) []Result {
	const id = "integrity.operation-id"
	first := make(map[string]string)
	var results []Result
	for op := range doc.Operations() {
		if op.OperationID == "" {
			continue
		}
		scope := operationScope(op.Path, op.Method)
		if prev, dup := first[op.OperationID]; dup {
			results = append(results, fail(id, scope, &MismatchError{Scope: scope, Field: "operationId " + strconv.Quote(op.OperationID), Expected: "unique", Actual: "also used by " + prev}))
			continue
		}
		first[op.OperationID] = scope
	}
	if len(results) == 0 {
		results = append(results, pass(id, "document", "%d operationId(s) are unique", len(first)))
	}
	return results
}
