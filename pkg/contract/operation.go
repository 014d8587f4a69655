package contract

import (
	"context"
	"strings"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// OperationExpectation asserts the shape of one operation. Only populated
// fields are checked.
type OperationExpectation struct {
	Path   string
	Method string
	// Absent asserts the method is not declared under Path; all other
	// fields are ignored.
	Absent             bool
	OperationID        string
	Summary            string
	Tags               []string
	PermissionsContain []string
	Parameters         []string
	Request            *RequestExpectation
	Responses          []ResponseExpectation
}

// RequestExpectation describes an operation's request body.
type RequestExpectation struct {
	Absent    bool
	Required  *bool
	MediaType string
	SchemaRef string
}

// ResponseExpectation describes one response entry.
type ResponseExpectation struct {
	Status              string
	Description         string
	DescriptionContains string
	MediaType           string
	SchemaRef           string
	// NoContent asserts the response declares no content key at all. An
	// explicit empty content mapping does not satisfy it.
	NoContent bool
}

func (e OperationExpectation) Name() string {
	return operationScope(e.Path, e.Method)
}

func (e OperationExpectation) Evaluate(_ context.Context, doc *pkgopenapi.Contract) []Result {
	scope := e.Name()
	if e.Absent {
		return []Result{expectOperationAbsent(doc, e.Path, e.Method)}
	}

	op, err := ResolveOperation(doc, e.Path, e.Method)
	if err != nil {
		return []Result{fail("operation.exists", scope, err)}
	}

	results := []Result{pass("operation.exists", scope, "operation is declared")}
	if e.OperationID != "" {
		results = append(results, expectEqual("operation.id", scope, "operationId", e.OperationID, op.OperationID))
	}
	if e.Summary != "" {
		results = append(results, expectEqual("operation.summary", scope, "summary", e.Summary, op.Summary))
	}
	for _, tag := range e.Tags {
		if op.HasTag(tag) {
			results = append(results, pass("operation.tag", scope, "tagged %q", tag))
		} else {
			results = append(results, fail("operation.tag", scope, &MismatchError{Scope: scope, Field: "tags", Expected: tag, Actual: op.Tags}))
		}
	}
	for _, want := range e.PermissionsContain {
		if op.Permissions != "" && strings.Contains(op.Permissions, want) {
			results = append(results, pass("operation.permissions", scope, "permissions mention %q", want))
		} else {
			results = append(results, fail("operation.permissions", scope, &MismatchError{Scope: scope, Field: "permissions", Expected: want, Actual: op.Permissions}))
		}
	}
	for _, want := range e.Parameters {
		results = append(results, expectParameter("operation.parameter", scope, doc, op.Parameters, want))
	}
	if e.Request != nil {
		results = append(results, e.Request.evaluate(doc, scope, op)...)
	}
	for _, resp := range e.Responses {
		results = append(results, resp.evaluate(doc, scope, op)...)
	}
	return results
}

func expectOperationAbsent(doc *pkgopenapi.Contract, path, method string) Result {
	scope := operationScope(path, method)
	item, ok := doc.Path(path)
	if !ok {
		return pass("operation.absent", scope, "path is not declared")
	}
	if _, ok := item.Operation(method); ok {
		return fail("operation.absent", scope, &MismatchError{Scope: scope, Field: "presence", Expected: "absent", Actual: "present"})
	}
	return pass("operation.absent", scope, "method is not declared")
}

func (e RequestExpectation) evaluate(doc *pkgopenapi.Contract, scope string, op *pkgopenapi.Operation) []Result {
	if e.Absent {
		if op.RequestBody != nil {
			return []Result{fail("request.absent", scope, &MismatchError{Scope: scope, Field: "requestBody", Expected: "absent", Actual: "present"})}
		}
		return []Result{pass("request.absent", scope, "no request body")}
	}

	body, ok := doc.ResolveRequestBody(op.RequestBody)
	if !ok {
		key := "requestBody"
		if op.RequestBody != nil {
			key = op.RequestBody.Ref
		}
		return []Result{fail("request.exists", scope, &NotFoundError{Kind: "request body", Key: key, Scope: scope})}
	}

	results := []Result{pass("request.exists", scope, "request body is declared")}
	if e.Required != nil {
		if body.Required == *e.Required {
			results = append(results, pass("request.required", scope, "required is %t", body.Required))
		} else {
			results = append(results, fail("request.required", scope, &MismatchError{Scope: scope, Field: "requestBody.required", Expected: *e.Required, Actual: body.Required}))
		}
	}
	if e.MediaType == "" && e.SchemaRef == "" {
		return results
	}
	return append(results, expectMediaSchema("request", scope, &body.Content, e.MediaType, e.SchemaRef)...)
}

func (e ResponseExpectation) evaluate(doc *pkgopenapi.Contract, opScope string, op *pkgopenapi.Operation) []Result {
	scope := opScope + " " + e.Status
	declared, ok := op.Response(e.Status)
	if !ok {
		return []Result{fail("response.exists", opScope, &NotFoundError{Kind: "response", Key: e.Status, Scope: opScope})}
	}
	resp, ok := doc.ResolveResponse(declared)
	if !ok {
		return []Result{fail("response.exists", scope, &NotFoundError{Kind: "response component", Key: declared.Ref, Scope: scope})}
	}

	results := []Result{pass("response.exists", scope, "response is declared")}
	if e.Description != "" {
		results = append(results, expectEqual("response.description", scope, "description", e.Description, resp.Description))
	}
	if e.DescriptionContains != "" {
		if strings.Contains(strings.ToLower(resp.Description), strings.ToLower(e.DescriptionContains)) {
			results = append(results, pass("response.description", scope, "description mentions %q", e.DescriptionContains))
		} else {
			results = append(results, fail("response.description", scope, &MismatchError{Scope: scope, Field: "description", Expected: "text containing " + render(e.DescriptionContains), Actual: resp.Description}))
		}
	}
	if e.NoContent {
		switch {
		case !resp.HasContent():
			results = append(results, pass("response.no-content", scope, "no content declared"))
		case resp.Content.Len() == 0:
			results = append(results, fail("response.no-content", scope, &MismatchError{Scope: scope, Field: "content", Expected: "absent", Actual: "empty mapping"}))
		default:
			results = append(results, fail("response.no-content", scope, &MismatchError{Scope: scope, Field: "content", Expected: "absent", Actual: resp.Content.Keys()}))
		}
	}
	if e.MediaType != "" || e.SchemaRef != "" {
		results = append(results, expectMediaSchema("response", scope, resp.Content, e.MediaType, e.SchemaRef)...)
	}
	return results
}

func expectMediaSchema(kind, scope string, content *pkgopenapi.OrderedMap[*pkgopenapi.MediaType], mediaType, schemaRef string) []Result {
	mt, ok := pkgopenapi.PreferredMediaType(content, mediaType)
	if !ok {
		key := mediaType
		if key == "" {
			key = "any"
		}
		var declared []string
		if content != nil {
			declared = content.Keys()
		}
		return []Result{fail(kind+".media-type", scope, &MismatchError{Scope: scope, Field: "content", Expected: key, Actual: declared})}
	}

	var results []Result
	if mediaType != "" {
		results = append(results, pass(kind+".media-type", scope, "declares %s", mt.Name))
	}
	if schemaRef != "" {
		got := pkgopenapi.RefOf(mt.Schema)
		if got == "" && mt.Schema != nil {
			got = "inline schema"
		}
		results = append(results, expectEqual(kind+".schema", scope, mt.Name+" schema", schemaRef, got))
	}
	return results
}

// Methods returns the declared methods of template in document order.
func Methods(doc *pkgopenapi.Contract, template string) []string {
	item, ok := doc.Path(template)
	if !ok {
		return nil
	}
	return item.Operations.Keys()
}
