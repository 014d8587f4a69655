package parser

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// Parser implements pkgopenapi.Parser on top of yaml.v3 nodes so document
// order survives into the typed model.
type Parser struct {
	options  pkgopenapi.ParserOptions
	stripper *bluemonday.Policy
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{
		options:  options,
		stripper: bluemonday.StrictPolicy(),
	}
}

// walker carries per-document parse state.
type walker struct {
	parser   *Parser
	contract *pkgopenapi.Contract
}

// Parse decodes doc into a Contract. Malformed syntax and unrecognised shapes
// are reported as *pkgopenapi.ParseError.
func (p *Parser) Parse(ctx context.Context, doc pkgopenapi.Document) (*pkgopenapi.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, &pkgopenapi.ParseError{Source: doc.Location(), Message: "document payload is empty"}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, &pkgopenapi.ParseError{Source: doc.Location(), Message: "malformed document", Err: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &pkgopenapi.ParseError{Source: doc.Location(), Message: "document is empty"}
	}

	w := &walker{parser: p, contract: &pkgopenapi.Contract{}}
	if err := w.document(root.Content[0]); err != nil {
		var perr *pkgopenapi.ParseError
		if errors.As(err, &perr) {
			perr.Source = doc.Location()
		}
		return nil, err
	}
	return w.contract, nil
}

func (w *walker) document(n *yaml.Node) error {
	entries, err := w.pairs(n, "")
	if err != nil {
		return err
	}

	var pathsNode, componentsNode *yaml.Node
	for _, entry := range entries {
		switch entry.key {
		case "openapi", "swagger":
			if w.contract.OpenAPI, err = w.scalar(entry.value, entry.key); err != nil {
				return err
			}
		case "info":
			if err := w.info(entry.value); err != nil {
				return err
			}
		case "paths":
			pathsNode = entry.value
		case "components":
			componentsNode = entry.value
		}
	}

	if componentsNode != nil && !isNull(componentsNode) {
		if err := w.components(componentsNode); err != nil {
			return err
		}
	}

	if pathsNode != nil && !isNull(pathsNode) {
		if err := w.paths(pathsNode); err != nil {
			return err
		}
	}
	if w.contract.Paths.Len() == 0 && !w.parser.options.AllowEmptyPaths {
		return w.shapeError(pathsNode, "paths", "document does not contain any paths")
	}
	return nil
}

func (w *walker) info(n *yaml.Node) error {
	if isNull(n) {
		return nil
	}
	entries, err := w.pairs(n, "info")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		switch entry.key {
		case "title":
			if w.contract.Title, err = w.scalar(entry.value, "info.title"); err != nil {
				return err
			}
		case "version":
			if w.contract.Version, err = w.scalar(entry.value, "info.version"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) paths(n *yaml.Node) error {
	entries, err := w.pairs(n, "paths")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.key, "x-") {
			continue
		}
		if !strings.HasPrefix(entry.key, "/") {
			return w.shapeError(entry.keyN, "paths", "path %q must start with /", entry.key)
		}
		item, err := w.pathItem(entry.key, entry.value)
		if err != nil {
			return err
		}
		w.contract.Paths.Set(entry.key, item)
	}
	return nil
}

func (w *walker) pathItem(path string, n *yaml.Node) (*pkgopenapi.PathItem, error) {
	at := join("paths", path)
	item := &pkgopenapi.PathItem{Path: path}
	if isNull(n) {
		return item, nil
	}
	entries, err := w.pairs(n, at)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.key == "parameters" {
			if item.Parameters, err = w.parameters(entry.value, join(at, "parameters")); err != nil {
				return nil, err
			}
		}
	}
	for _, entry := range entries {
		if !isMethod(entry.key) {
			continue
		}
		op, err := w.operation(path, entry.key, entry.value)
		if err != nil {
			return nil, err
		}
		item.Operations.Set(entry.key, op)
	}
	return item, nil
}

func isMethod(key string) bool {
	for _, m := range pkgopenapi.Methods {
		if m == key {
			return true
		}
	}
	return false
}

func (w *walker) operation(path, method string, n *yaml.Node) (*pkgopenapi.Operation, error) {
	at := join("paths", path, method)
	op := &pkgopenapi.Operation{Path: path, Method: method}
	entries, err := w.pairs(n, at)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		loc := join(at, entry.key)
		switch entry.key {
		case "operationId":
			op.OperationID, err = w.scalar(entry.value, loc)
		case "summary":
			op.Summary, err = w.scalar(entry.value, loc)
		case "description":
			var text string
			if text, err = w.scalar(entry.value, loc); err == nil {
				op.Description, op.Permissions = w.splitPermissions(text)
			}
		case "tags":
			op.Tags, err = w.stringList(entry.value, loc)
		case "deprecated":
			op.Deprecated, err = w.boolean(entry.value, loc)
		case "parameters":
			op.Parameters, err = w.parameters(entry.value, loc)
		case "requestBody":
			op.RequestBody, err = w.requestBody(entry.value, loc)
		case "responses":
			err = w.responses(op, entry.value, loc)
		}
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

// splitPermissions separates the permissions section from the description.
// Markup inside the permissions text is stripped.
func (w *walker) splitPermissions(text string) (string, string) {
	marker := w.parser.options.PermissionsMarker
	if marker == "" {
		return text, ""
	}
	idx := strings.Index(text, marker)
	if idx < 0 {
		return text, ""
	}
	description := strings.TrimSpace(text[:idx])
	permissions := strings.TrimSpace(text[idx+len(marker):])
	permissions = strings.TrimSpace(html.UnescapeString(w.parser.stripper.Sanitize(permissions)))
	return description, permissions
}

func (w *walker) responses(op *pkgopenapi.Operation, n *yaml.Node, at string) error {
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.key, "x-") {
			continue
		}
		resp, err := w.response(entry.key, entry.value, join(at, entry.key))
		if err != nil {
			return err
		}
		op.Responses.Set(entry.key, resp)
	}
	return nil
}

func (w *walker) response(status string, n *yaml.Node, at string) (*pkgopenapi.Response, error) {
	resp := &pkgopenapi.Response{Status: status}
	entries, err := w.pairs(n, at)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		loc := join(at, entry.key)
		switch entry.key {
		case "$ref":
			if resp.Ref, err = w.ref(entry.value, loc); err != nil {
				return nil, err
			}
		case "description":
			if resp.Description, err = w.scalar(entry.value, loc); err != nil {
				return nil, err
			}
		case "content":
			content := &pkgopenapi.OrderedMap[*pkgopenapi.MediaType]{}
			if !isNull(entry.value) {
				if err := w.mediaTypes(content, entry.value, loc); err != nil {
					return nil, err
				}
			}
			resp.Content = content
		}
	}
	return resp, nil
}

func (w *walker) requestBody(n *yaml.Node, at string) (*pkgopenapi.RequestBody, error) {
	body := &pkgopenapi.RequestBody{}
	entries, err := w.pairs(n, at)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		loc := join(at, entry.key)
		switch entry.key {
		case "$ref":
			body.Ref, err = w.ref(entry.value, loc)
		case "description":
			body.Description, err = w.scalar(entry.value, loc)
		case "required":
			body.Required, err = w.boolean(entry.value, loc)
		case "content":
			if !isNull(entry.value) {
				err = w.mediaTypes(&body.Content, entry.value, loc)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (w *walker) mediaTypes(target *pkgopenapi.OrderedMap[*pkgopenapi.MediaType], n *yaml.Node, at string) error {
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		loc := join(at, entry.key)
		mt := &pkgopenapi.MediaType{Name: entry.key}
		if !isNull(entry.value) {
			if _, err := w.pairs(entry.value, loc); err != nil {
				return err
			}
			if schemaNode := lookup(entry.value, "schema"); schemaNode != nil {
				if mt.Schema, err = w.schemaSpec(schemaNode, join(loc, "schema")); err != nil {
					return err
				}
			}
		}
		target.Set(entry.key, mt)
	}
	return nil
}

func (w *walker) parameters(n *yaml.Node, at string) ([]pkgopenapi.ParameterSpec, error) {
	items, err := w.sequence(n, at)
	if err != nil {
		return nil, err
	}
	out := make([]pkgopenapi.ParameterSpec, 0, len(items))
	for idx, item := range items {
		spec, err := w.parameter(item, join(at, itoa(idx)))
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

func (w *walker) parameter(n *yaml.Node, at string) (pkgopenapi.ParameterSpec, error) {
	if refNode := lookup(n, "$ref"); refNode != nil {
		ref, err := w.ref(refNode, join(at, "$ref"))
		if err != nil {
			return nil, err
		}
		return pkgopenapi.ParameterRef{Ref: ref}, nil
	}
	return w.inlineParameter(n, at)
}

func (w *walker) inlineParameter(n *yaml.Node, at string) (*pkgopenapi.InlineParameter, error) {
	entries, err := w.pairs(n, at)
	if err != nil {
		return nil, err
	}
	param := &pkgopenapi.InlineParameter{}
	for _, entry := range entries {
		loc := join(at, entry.key)
		switch entry.key {
		case "name":
			param.Name, err = w.scalar(entry.value, loc)
		case "in":
			param.In, err = w.scalar(entry.value, loc)
		case "description":
			param.Description, err = w.scalar(entry.value, loc)
		case "required":
			param.Required, err = w.boolean(entry.value, loc)
		case "schema":
			param.Schema, err = w.schemaSpec(entry.value, loc)
		}
		if err != nil {
			return nil, err
		}
	}
	if param.Name == "" || param.In == "" {
		return nil, w.shapeError(n, at, "parameter must be a $ref or declare both name and in")
	}
	return param, nil
}

// ref reads a $ref value and records where it appeared.
func (w *walker) ref(n *yaml.Node, at string) (string, error) {
	value, err := w.scalar(n, at)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", w.shapeError(n, at, "$ref must be a non-empty string")
	}
	site := pkgopenapi.RefSite{Ref: value, Location: strings.TrimSuffix(at, ".$ref")}
	if node := deref(n); node != nil {
		site.Line = node.Line
		site.Column = node.Column
	}
	w.contract.Refs = append(w.contract.Refs, site)
	return value, nil
}

func (w *walker) components(n *yaml.Node) error {
	entries, err := w.pairs(n, "components")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		at := join("components", entry.key)
		if isNull(entry.value) {
			continue
		}
		switch entry.key {
		case "schemas":
			err = w.componentSchemas(entry.value, at)
		case "parameters":
			err = w.componentParameters(entry.value, at)
		case "responses":
			err = w.componentResponses(entry.value, at)
		case "requestBodies":
			err = w.componentRequestBodies(entry.value, at)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) componentSchemas(n *yaml.Node, at string) error {
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		spec, err := w.schemaSpec(entry.value, join(at, entry.key))
		if err != nil {
			return err
		}
		schema, ok := spec.(*pkgopenapi.Schema)
		if !ok {
			// An aliasing component keeps its target reachable through allOf.
			schema = &pkgopenapi.Schema{AllOf: []pkgopenapi.SchemaSpec{spec}}
		}
		schema.Name = entry.key
		w.contract.Components.Schemas.Set(entry.key, schema)
	}
	return nil
}

func (w *walker) componentParameters(n *yaml.Node, at string) error {
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		loc := join(at, entry.key)
		if lookup(entry.value, "$ref") != nil {
			return w.shapeError(entry.value, loc, "component parameter %q must be defined inline", entry.key)
		}
		param, err := w.inlineParameter(entry.value, loc)
		if err != nil {
			return err
		}
		w.contract.Components.Parameters.Set(entry.key, param)
	}
	return nil
}

func (w *walker) componentResponses(n *yaml.Node, at string) error {
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		resp, err := w.response("", entry.value, join(at, entry.key))
		if err != nil {
			return err
		}
		w.contract.Components.Responses.Set(entry.key, resp)
	}
	return nil
}

func (w *walker) componentRequestBodies(n *yaml.Node, at string) error {
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		body, err := w.requestBody(entry.value, join(at, entry.key))
		if err != nil {
			return err
		}
		w.contract.Components.RequestBodies.Set(entry.key, body)
	}
	return nil
}
