package openapi

import (
	"iter"
	"strings"
)

// Reference prefixes for the component kinds the parser understands.
const (
	SchemaRefPrefix      = "#/components/schemas/"
	ParameterRefPrefix   = "#/components/parameters/"
	ResponseRefPrefix    = "#/components/responses/"
	RequestBodyRefPrefix = "#/components/requestBodies/"
)

// Methods lists the operation keys recognised inside a path item, in the
// order OpenAPI declares them.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Contract is the typed, immutable view of a parsed contract document. Paths
// and component maps keep document order.
type Contract struct {
	OpenAPI    string
	Title      string
	Version    string
	Paths      OrderedMap[*PathItem]
	Components Components

	// Refs records every $ref string found while parsing, with its location.
	Refs []RefSite
}

// Components holds the reusable definitions addressable through $ref.
type Components struct {
	Schemas       OrderedMap[*Schema]
	Parameters    OrderedMap[*InlineParameter]
	Responses     OrderedMap[*Response]
	RequestBodies OrderedMap[*RequestBody]
}

// RefSite is a $ref occurrence. Location is a dotted path through the
// document, e.g. "paths./v2/node/{nodeID}.get.responses.200".
type RefSite struct {
	Ref      string
	Location string
	Line     int
	Column   int
}

// Path returns the path item stored under the exact URL template.
func (c *Contract) Path(template string) (*PathItem, bool) {
	if c == nil {
		return nil, false
	}
	return c.Paths.Get(template)
}

// Operation returns the operation for template and method (case-insensitive).
func (c *Contract) Operation(template, method string) (*Operation, bool) {
	item, ok := c.Path(template)
	if !ok {
		return nil, false
	}
	return item.Operation(method)
}

// Schema returns the component schema registered under name.
func (c *Contract) Schema(name string) (*Schema, bool) {
	if c == nil {
		return nil, false
	}
	return c.Components.Schemas.Get(name)
}

// Operations iterates every operation in path order, then method order.
func (c *Contract) Operations() iter.Seq[*Operation] {
	return func(yield func(*Operation) bool) {
		if c == nil {
			return
		}
		for _, item := range c.Paths.All() {
			for _, op := range item.Operations.All() {
				if !yield(op) {
					return
				}
			}
		}
	}
}

// Resolves reports whether ref names an existing component.
func (c *Contract) Resolves(ref string) bool {
	if c == nil {
		return false
	}
	switch {
	case strings.HasPrefix(ref, SchemaRefPrefix):
		return c.Components.Schemas.Has(strings.TrimPrefix(ref, SchemaRefPrefix))
	case strings.HasPrefix(ref, ParameterRefPrefix):
		return c.Components.Parameters.Has(strings.TrimPrefix(ref, ParameterRefPrefix))
	case strings.HasPrefix(ref, ResponseRefPrefix):
		return c.Components.Responses.Has(strings.TrimPrefix(ref, ResponseRefPrefix))
	case strings.HasPrefix(ref, RequestBodyRefPrefix):
		return c.Components.RequestBodies.Has(strings.TrimPrefix(ref, RequestBodyRefPrefix))
	default:
		return false
	}
}

// maxRefDepth bounds reference chains so cyclic aliases terminate.
const maxRefDepth = 32

// ResolveSchema follows spec through schema references and returns the
// concrete schema.
func (c *Contract) ResolveSchema(spec SchemaSpec) (*Schema, bool) {
	for depth := 0; depth < maxRefDepth; depth++ {
		switch v := spec.(type) {
		case *Schema:
			target, ok := v.aliasTarget()
			if !ok {
				return v, v != nil
			}
			spec = target
		case SchemaRef:
			next, ok := c.Schema(v.Name())
			if !ok {
				return nil, false
			}
			spec = next
		default:
			return nil, false
		}
	}
	return nil, false
}

// ResolveParameter returns the concrete parameter behind spec.
func (c *Contract) ResolveParameter(spec ParameterSpec) (*InlineParameter, bool) {
	switch v := spec.(type) {
	case *InlineParameter:
		return v, v != nil
	case ParameterRef:
		if c == nil {
			return nil, false
		}
		return c.Components.Parameters.Get(v.Name())
	default:
		return nil, false
	}
}

// ResolveResponse returns the concrete response behind r, following a
// components.responses reference when present.
func (c *Contract) ResolveResponse(r *Response) (*Response, bool) {
	if r == nil {
		return nil, false
	}
	if r.Ref == "" {
		return r, true
	}
	if c == nil || !strings.HasPrefix(r.Ref, ResponseRefPrefix) {
		return nil, false
	}
	return c.Components.Responses.Get(strings.TrimPrefix(r.Ref, ResponseRefPrefix))
}

// ResolveRequestBody returns the concrete request body behind b.
func (c *Contract) ResolveRequestBody(b *RequestBody) (*RequestBody, bool) {
	if b == nil {
		return nil, false
	}
	if b.Ref == "" {
		return b, true
	}
	if c == nil || !strings.HasPrefix(b.Ref, RequestBodyRefPrefix) {
		return nil, false
	}
	return c.Components.RequestBodies.Get(strings.TrimPrefix(b.Ref, RequestBodyRefPrefix))
}

// PathItem groups the operations declared under one URL template.
type PathItem struct {
	Path       string
	Parameters []ParameterSpec
	Operations OrderedMap[*Operation]
}

// Operation returns the operation for method, matched case-insensitively.
func (p *PathItem) Operation(method string) (*Operation, bool) {
	if p == nil {
		return nil, false
	}
	return p.Operations.Get(strings.ToLower(method))
}

// Operation is one method-scoped handler description.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	// Description excludes the permissions section when one is present.
	Description string
	Permissions string
	Tags        []string
	Deprecated  bool
	Parameters  []ParameterSpec
	RequestBody *RequestBody
	Responses   OrderedMap[*Response]
}

// Response returns the response declared for status.
func (o *Operation) Response(status string) (*Response, bool) {
	if o == nil {
		return nil, false
	}
	return o.Responses.Get(status)
}

// HasTag reports whether the operation carries tag.
func (o *Operation) HasTag(tag string) bool {
	if o == nil {
		return false
	}
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ParameterSpec is either a ParameterRef or an *InlineParameter.
type ParameterSpec interface {
	parameterSpec()
}

// ParameterRef points at components.parameters.
type ParameterRef struct {
	Ref string
}

func (ParameterRef) parameterSpec() {}

// Name returns the referenced component name.
func (r ParameterRef) Name() string {
	return strings.TrimPrefix(r.Ref, ParameterRefPrefix)
}

// InlineParameter is a literal parameter definition.
type InlineParameter struct {
	Name        string
	In          string
	Description string
	Required    bool
	Schema      SchemaSpec
}

func (*InlineParameter) parameterSpec() {}

// RequestBody describes an operation's payload.
type RequestBody struct {
	// Ref is set when the body is a components.requestBodies reference; the
	// remaining fields are then empty.
	Ref         string
	Description string
	Required    bool
	Content     OrderedMap[*MediaType]
}

// MediaType pairs a media type name with its schema.
type MediaType struct {
	Name   string
	Schema SchemaSpec
}

// Response is one entry under an operation's responses.
type Response struct {
	Status      string
	Ref         string
	Description string
	// Content is nil when the response has no content key, and an empty map
	// when it declares `content: {}`.
	Content *OrderedMap[*MediaType]
}

// HasContent reports whether a content key was declared, empty or not.
func (r *Response) HasContent() bool {
	return r != nil && r.Content != nil
}

// PreferredMediaType picks the named media type, or application/json, or the
// first declared one when name is empty.
func PreferredMediaType(content *OrderedMap[*MediaType], name string) (*MediaType, bool) {
	if content == nil || content.Len() == 0 {
		return nil, false
	}
	if name != "" {
		return content.Get(name)
	}
	if mt, ok := content.Get("application/json"); ok {
		return mt, true
	}
	for _, mt := range content.All() {
		return mt, true
	}
	return nil, false
}

// SchemaSpec is either a SchemaRef or an inline *Schema.
type SchemaSpec interface {
	schemaSpec()
}

// SchemaRef points at components.schemas.
type SchemaRef struct {
	Ref string
}

func (SchemaRef) schemaSpec() {}

// Name returns the referenced component name.
func (r SchemaRef) Name() string {
	return strings.TrimPrefix(r.Ref, SchemaRefPrefix)
}

// Schema is an inline or component schema.
type Schema struct {
	// Name is the component key for components.schemas entries.
	Name        string
	Type        string
	Format      string
	Description string
	Nullable    bool
	Properties  OrderedMap[SchemaSpec]
	Required    []string
	Enum        []string
	Example     any
	HasExample  bool
	Items       SchemaSpec
	AllOf       []SchemaSpec
	OneOf       []SchemaSpec
	AnyOf       []SchemaSpec
}

func (*Schema) schemaSpec() {}

// aliasTarget returns the single allOf member of a schema that declares
// nothing else, such as a component that only references another one.
func (s *Schema) aliasTarget() (SchemaSpec, bool) {
	if s == nil || len(s.AllOf) != 1 {
		return nil, false
	}
	if s.Type != "" || s.Format != "" || s.Description != "" || s.Nullable || s.HasExample ||
		s.Properties.Len() > 0 || len(s.Required) > 0 || len(s.Enum) > 0 ||
		s.Items != nil || len(s.OneOf) > 0 || len(s.AnyOf) > 0 {
		return nil, false
	}
	return s.AllOf[0], true
}

// Property returns the named property.
func (s *Schema) Property(name string) (SchemaSpec, bool) {
	if s == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// IsRequired reports whether name is listed in required.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// RefOf returns the reference string carried by spec, or "" when spec is
// inline.
func RefOf(spec SchemaSpec) string {
	if ref, ok := spec.(SchemaRef); ok {
		return ref.Ref
	}
	return ""
}
