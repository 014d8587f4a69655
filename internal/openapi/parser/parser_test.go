package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

const nodeContract = `openapi: 3.0.3
info:
  title: Node API
  version: 2.1.0
paths:
  /v2/node/{nodeID}:
    parameters:
      - $ref: '#/components/parameters/NodeID'
    get:
      operationId: getNode
      summary: Get node
      tags: [nodes]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Node'
        "404":
          description: Node not found
  /v2/node/{nodeID}/config:
    put:
      operationId: putNodeConfig
      description: |
        Replace the node configuration.

        **Permissions:** <b>node:write</b> & admin
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/NodeConfig'
      parameters:
        - name: dryRun
          in: query
          schema:
            type: boolean
      responses:
        "204":
          description: Updated
        "400":
          description: Bad request
          content: {}
components:
  parameters:
    NodeID:
      name: nodeID
      in: path
      required: true
      schema:
        type: string
  schemas:
    Node:
      type: object
      required: [id, name]
      properties:
        name:
          type: string
        id:
          type: string
          format: uuid
          example: 7d1b
        phase:
          type: [string, "null"]
          enum: [booting, running, stopped]
    NodeConfig:
      type: object
      properties:
        labels:
          type: array
          items:
            type: string
`

func parse(t *testing.T, raw string, options ...pkgopenapi.ParserOption) (*pkgopenapi.Contract, error) {
	t.Helper()
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("inline.yaml"), []byte(raw))
	return New(pkgopenapi.NewParserOptions(options...)).Parse(context.Background(), doc)
}

func mustParse(t *testing.T, raw string, options ...pkgopenapi.ParserOption) *pkgopenapi.Contract {
	t.Helper()
	contract, err := parse(t, raw, options...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return contract
}

func TestParse_PreservesDocumentOrder(t *testing.T) {
	contract := mustParse(t, nodeContract)

	wantPaths := []string{"/v2/node/{nodeID}", "/v2/node/{nodeID}/config"}
	if diff := cmp.Diff(wantPaths, contract.Paths.Keys()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	node, ok := contract.Schema("Node")
	if !ok {
		t.Fatalf("schema Node not found")
	}
	wantProps := []string{"name", "id", "phase"}
	if diff := cmp.Diff(wantProps, node.Properties.Keys()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if contract.Title != "Node API" || contract.Version != "2.1.0" || contract.OpenAPI != "3.0.3" {
		t.Fatalf("unexpected info: %q %q %q", contract.Title, contract.Version, contract.OpenAPI)
	}
}

func TestParse_ParameterSumTypes(t *testing.T) {
	contract := mustParse(t, nodeContract)

	item, _ := contract.Path("/v2/node/{nodeID}")
	if len(item.Parameters) != 1 {
		t.Fatalf("path parameters = %d, want 1", len(item.Parameters))
	}
	ref, ok := item.Parameters[0].(pkgopenapi.ParameterRef)
	if !ok {
		t.Fatalf("expected ParameterRef, got %T", item.Parameters[0])
	}
	if ref.Name() != "NodeID" {
		t.Fatalf("ref name = %q", ref.Name())
	}

	op, _ := contract.Operation("/v2/node/{nodeID}/config", "PUT")
	inline, ok := op.Parameters[0].(*pkgopenapi.InlineParameter)
	if !ok {
		t.Fatalf("expected *InlineParameter, got %T", op.Parameters[0])
	}
	if inline.Name != "dryRun" || inline.In != "query" {
		t.Fatalf("unexpected inline parameter %+v", inline)
	}

	resolved, ok := contract.ResolveParameter(ref)
	if !ok || resolved.Name != "nodeID" || !resolved.Required {
		t.Fatalf("resolve parameter: %+v %v", resolved, ok)
	}
}

func TestParse_ResponseContentPresence(t *testing.T) {
	contract := mustParse(t, nodeContract)
	op, _ := contract.Operation("/v2/node/{nodeID}/config", "put")

	noBody, _ := op.Response("204")
	if noBody.HasContent() {
		t.Fatalf("204 should have no content key")
	}
	emptyBody, _ := op.Response("400")
	if !emptyBody.HasContent() {
		t.Fatalf("400 declares content: {} and should report a content key")
	}
	if emptyBody.Content.Len() != 0 {
		t.Fatalf("400 content should be empty, got %d entries", emptyBody.Content.Len())
	}

	get, _ := contract.Operation("/v2/node/{nodeID}", "get")
	ok200, _ := get.Response("200")
	mt, found := pkgopenapi.PreferredMediaType(ok200.Content, "")
	if !found {
		t.Fatalf("expected a media type on 200")
	}
	if got := pkgopenapi.RefOf(mt.Schema); got != "#/components/schemas/Node" {
		t.Fatalf("200 schema ref = %q", got)
	}
}

func TestParse_RequestBody(t *testing.T) {
	contract := mustParse(t, nodeContract)
	op, _ := contract.Operation("/v2/node/{nodeID}/config", "put")
	if op.RequestBody == nil || !op.RequestBody.Required {
		t.Fatalf("expected required request body, got %+v", op.RequestBody)
	}
	mt, ok := op.RequestBody.Content.Get("application/json")
	if !ok {
		t.Fatalf("expected application/json content")
	}
	if got := pkgopenapi.RefOf(mt.Schema); got != "#/components/schemas/NodeConfig" {
		t.Fatalf("request schema ref = %q", got)
	}
}

func TestParse_PermissionsSection(t *testing.T) {
	contract := mustParse(t, nodeContract)
	op, _ := contract.Operation("/v2/node/{nodeID}/config", "put")

	if op.Description != "Replace the node configuration." {
		t.Fatalf("description = %q", op.Description)
	}
	if op.Permissions != "node:write & admin" {
		t.Fatalf("permissions = %q", op.Permissions)
	}

	contract = mustParse(t, nodeContract, pkgopenapi.WithPermissionsMarker(""))
	op, _ = contract.Operation("/v2/node/{nodeID}/config", "put")
	if op.Permissions != "" || !strings.Contains(op.Description, "**Permissions:**") {
		t.Fatalf("marker disabled: description=%q permissions=%q", op.Description, op.Permissions)
	}
}

func TestParse_SchemaDetails(t *testing.T) {
	contract := mustParse(t, nodeContract)
	node, _ := contract.Schema("Node")

	phaseSpec, _ := node.Property("phase")
	phase, ok := phaseSpec.(*pkgopenapi.Schema)
	if !ok {
		t.Fatalf("expected inline schema for phase, got %T", phaseSpec)
	}
	if phase.Type != "string" || !phase.Nullable {
		t.Fatalf("phase type=%q nullable=%v", phase.Type, phase.Nullable)
	}
	if diff := cmp.Diff([]string{"booting", "running", "stopped"}, phase.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}

	idSpec, _ := node.Property("id")
	id := idSpec.(*pkgopenapi.Schema)
	if id.Format != "uuid" || !id.HasExample || id.Example != "7d1b" {
		t.Fatalf("unexpected id schema %+v", id)
	}

	cfg, _ := contract.Schema("NodeConfig")
	labelsSpec, _ := cfg.Property("labels")
	labels := labelsSpec.(*pkgopenapi.Schema)
	items, ok := labels.Items.(*pkgopenapi.Schema)
	if !ok || items.Type != "string" {
		t.Fatalf("unexpected items %#v", labels.Items)
	}
}

func TestParse_RecordsReferenceSites(t *testing.T) {
	contract := mustParse(t, nodeContract)

	var got []string
	for _, site := range contract.Refs {
		got = append(got, site.Ref)
		if site.Line == 0 {
			t.Fatalf("ref %q recorded without a line", site.Ref)
		}
	}
	want := []string{
		"#/components/parameters/NodeID",
		"#/components/schemas/Node",
		"#/components/schemas/NodeConfig",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
	if contract.Refs[1].Location != "paths./v2/node/{nodeID}.get.responses.200.content.application/json.schema" {
		t.Fatalf("unexpected location %q", contract.Refs[1].Location)
	}
}

func TestParse_AcceptsJSON(t *testing.T) {
	const doc = `{"openapi":"3.0.0","info":{"title":"J","version":"1"},"paths":{"/b":{},"/a":{"get":{"responses":{"200":{"description":"OK"}}}}}}`
	contract := mustParse(t, doc)
	if diff := cmp.Diff([]string{"/b", "/a"}, contract.Paths.Keys()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		contain string
	}{
		{
			name:    "malformed yaml",
			doc:     "openapi: 3.0.0\npaths: [\n",
			contain: "malformed document",
		},
		{
			name:    "root not mapping",
			doc:     "- a\n- b\n",
			contain: "expected a mapping",
		},
		{
			name:    "no paths",
			doc:     "openapi: 3.0.0\ninfo: {title: x, version: '1'}\n",
			contain: "does not contain any paths",
		},
		{
			name:    "duplicate path",
			doc:     "openapi: 3.0.0\npaths:\n  /a: {}\n  /a: {}\n",
			contain: "duplicate key",
		},
		{
			name:    "parameter without name",
			doc:     "openapi: 3.0.0\npaths:\n  /a:\n    parameters:\n      - in: query\n",
			contain: "must be a $ref or declare both name and in",
		},
		{
			name:    "schema not mapping",
			doc:     "openapi: 3.0.0\npaths:\n  /a:\n    get:\n      responses:\n        '200':\n          description: OK\n          content:\n            application/json:\n              schema: [1]\n",
			contain: "schema must be a mapping",
		},
		{
			name:    "responses not mapping",
			doc:     "openapi: 3.0.0\npaths:\n  /a:\n    get:\n      responses: []\n",
			contain: "expected a mapping",
		},
		{
			name:    "path without slash",
			doc:     "openapi: 3.0.0\npaths:\n  a: {}\n",
			contain: "must start with /",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.doc)
			var perr *pkgopenapi.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T (%v)", err, err)
			}
			if perr.Source != "inline.yaml" {
				t.Fatalf("source = %q", perr.Source)
			}
			if !strings.Contains(err.Error(), tc.contain) {
				t.Fatalf("error %q does not contain %q", err.Error(), tc.contain)
			}
		})
	}
}

func TestParse_EmptyPathsAllowedWhenConfigured(t *testing.T) {
	const doc = "openapi: 3.0.0\ncomponents:\n  schemas:\n    A:\n      type: object\n"
	contract := mustParse(t, doc, pkgopenapi.WithEmptyPaths(true))
	if _, ok := contract.Schema("A"); !ok {
		t.Fatalf("expected schema A")
	}
}

func TestParse_NullSchemaIsEmpty(t *testing.T) {
	const doc = "openapi: 3.0.0\npaths:\n  /a: {}\ncomponents:\n  schemas:\n    S:\n      type: object\n      properties:\n        legacy:\n"
	contract := mustParse(t, doc)

	s, ok := contract.Schema("S")
	if !ok {
		t.Fatalf("schema S not parsed")
	}
	spec, ok := s.Property("legacy")
	if !ok {
		t.Fatalf("legacy property missing")
	}
	legacy, ok := spec.(*pkgopenapi.Schema)
	if !ok {
		t.Fatalf("expected inline schema, got %T", spec)
	}
	if legacy.Type != "" || legacy.Properties.Len() != 0 || len(legacy.AllOf) != 0 {
		t.Fatalf("expected empty schema, got %+v", legacy)
	}
}
