package contract

import (
	"fmt"
	"strings"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// SchemaLocator addresses a schema either by component name or through an
// operation's request body (Status empty) or response (Status set).
type SchemaLocator struct {
	Component string
	Path      string
	Method    string
	Status    string
	MediaType string
}

// Component returns a locator for components.schemas[name].
func Component(name string) SchemaLocator {
	return SchemaLocator{Component: name}
}

// ResponseSchema returns a locator for an operation's response body.
func ResponseSchema(path, method, status string) SchemaLocator {
	return SchemaLocator{Path: path, Method: method, Status: status}
}

// RequestSchema returns a locator for an operation's request body.
func RequestSchema(path, method string) SchemaLocator {
	return SchemaLocator{Path: path, Method: method}
}

func (l SchemaLocator) String() string {
	if l.Component != "" {
		return "schema " + l.Component
	}
	where := "request"
	if l.Status != "" {
		where = "response " + l.Status
	}
	out := fmt.Sprintf("%s %s", operationScope(l.Path, l.Method), where)
	if l.MediaType != "" {
		out += " " + l.MediaType
	}
	return out
}

// Resolve returns the concrete schema the locator points at, following
// references.
func (l SchemaLocator) Resolve(doc *pkgopenapi.Contract) (*pkgopenapi.Schema, error) {
	if l.Component != "" {
		component, ok := doc.Schema(l.Component)
		if !ok {
			return nil, &NotFoundError{Kind: "schema", Key: l.Component, Scope: "components.schemas"}
		}
		schema, ok := doc.ResolveSchema(component)
		if !ok {
			return nil, &NotFoundError{Kind: "schema", Key: pkgopenapi.RefOf(component.AllOf[0]), Scope: l.String()}
		}
		return schema, nil
	}

	spec, err := l.spec(doc)
	if err != nil {
		return nil, err
	}
	schema, ok := doc.ResolveSchema(spec)
	if !ok {
		return nil, &NotFoundError{Kind: "schema", Key: pkgopenapi.RefOf(spec), Scope: l.String()}
	}
	return schema, nil
}

// spec returns the schema position without resolving references.
func (l SchemaLocator) spec(doc *pkgopenapi.Contract) (pkgopenapi.SchemaSpec, error) {
	if l.Path == "" || l.Method == "" {
		return nil, fmt.Errorf("schema locator: component or path and method are required")
	}
	op, err := ResolveOperation(doc, l.Path, l.Method)
	if err != nil {
		return nil, err
	}

	var content *pkgopenapi.OrderedMap[*pkgopenapi.MediaType]
	if l.Status == "" {
		body, ok := doc.ResolveRequestBody(op.RequestBody)
		if !ok {
			return nil, &NotFoundError{Kind: "requestBody", Key: strings.ToUpper(l.Method), Scope: l.Path}
		}
		content = &body.Content
	} else {
		resp, ok := op.Response(l.Status)
		if !ok {
			return nil, &NotFoundError{Kind: "response", Key: l.Status, Scope: operationScope(l.Path, l.Method)}
		}
		if resp, ok = doc.ResolveResponse(resp); !ok {
			return nil, &NotFoundError{Kind: "response component", Key: l.Status, Scope: operationScope(l.Path, l.Method)}
		}
		content = resp.Content
	}

	mt, ok := pkgopenapi.PreferredMediaType(content, l.MediaType)
	if !ok || mt.Schema == nil {
		key := l.MediaType
		if key == "" {
			key = "schema"
		}
		return nil, &NotFoundError{Kind: "media type", Key: key, Scope: l.String()}
	}
	return mt.Schema, nil
}
