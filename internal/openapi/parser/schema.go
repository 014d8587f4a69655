package parser

import (
	"gopkg.in/yaml.v3"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// schemaSpec parses a schema position into a SchemaRef or an inline *Schema.
func (w *walker) schemaSpec(n *yaml.Node, at string) (pkgopenapi.SchemaSpec, error) {
	node := deref(n)
	if node != nil && isNull(node) {
		// "legacy:" with no value declares the key with an empty schema.
		return &pkgopenapi.Schema{}, nil
	}
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, w.shapeError(n, at, "schema must be a mapping, found %s", kindName(n))
	}
	if refNode := lookup(node, "$ref"); refNode != nil {
		ref, err := w.ref(refNode, join(at, "$ref"))
		if err != nil {
			return nil, err
		}
		return pkgopenapi.SchemaRef{Ref: ref}, nil
	}
	return w.schema(node, at)
}

func (w *walker) schema(n *yaml.Node, at string) (*pkgopenapi.Schema, error) {
	entries, err := w.pairs(n, at)
	if err != nil {
		return nil, err
	}

	schema := &pkgopenapi.Schema{}
	for _, entry := range entries {
		loc := join(at, entry.key)
		switch entry.key {
		case "type":
			err = w.schemaType(schema, entry.value, loc)
		case "format":
			schema.Format, err = w.scalar(entry.value, loc)
		case "description":
			schema.Description, err = w.scalar(entry.value, loc)
		case "nullable":
			schema.Nullable, err = w.boolean(entry.value, loc)
		case "required":
			schema.Required, err = w.stringList(entry.value, loc)
		case "enum":
			schema.Enum, err = w.stringList(entry.value, loc)
		case "example":
			if decodeErr := entry.value.Decode(&schema.Example); decodeErr != nil {
				err = w.shapeError(entry.value, loc, "example could not be decoded: %v", decodeErr)
			}
			schema.HasExample = true
		case "properties":
			err = w.properties(schema, entry.value, loc)
		case "items":
			schema.Items, err = w.schemaSpec(entry.value, loc)
		case "allOf":
			schema.AllOf, err = w.schemaList(entry.value, loc)
		case "oneOf":
			schema.OneOf, err = w.schemaList(entry.value, loc)
		case "anyOf":
			schema.AnyOf, err = w.schemaList(entry.value, loc)
		}
		if err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// schemaType accepts the 3.0 scalar form and the 3.1 list form, folding a
// "null" member into Nullable.
func (w *walker) schemaType(schema *pkgopenapi.Schema, n *yaml.Node, at string) error {
	node := deref(n)
	if node != nil && node.Kind == yaml.SequenceNode {
		types, err := w.stringList(node, at)
		if err != nil {
			return err
		}
		for _, t := range types {
			if t == "null" {
				schema.Nullable = true
				continue
			}
			if schema.Type != "" {
				return w.shapeError(node, at, "multiple non-null types are not supported")
			}
			schema.Type = t
		}
		return nil
	}
	value, err := w.scalar(n, at)
	if err != nil {
		return err
	}
	schema.Type = value
	return nil
}

func (w *walker) properties(schema *pkgopenapi.Schema, n *yaml.Node, at string) error {
	if isNull(n) {
		return nil
	}
	entries, err := w.pairs(n, at)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		spec, err := w.schemaSpec(entry.value, join(at, entry.key))
		if err != nil {
			return err
		}
		schema.Properties.Set(entry.key, spec)
	}
	return nil
}

func (w *walker) schemaList(n *yaml.Node, at string) ([]pkgopenapi.SchemaSpec, error) {
	items, err := w.sequence(n, at)
	if err != nil {
		return nil, err
	}
	out := make([]pkgopenapi.SchemaSpec, 0, len(items))
	for idx, item := range items {
		spec, err := w.schemaSpec(item, join(at, itoa(idx)))
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}
