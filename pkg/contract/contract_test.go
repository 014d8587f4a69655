package contract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
	"github.com/goliatone/go-apicontract/pkg/testsupport"
)

func idsAndStatus(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID + ":" + string(r.Status)
	}
	return out
}

const noContentDoc = `openapi: 3.0.3
info:
  title: X
  version: "1"
paths:
  /x:
    get:
      responses:
        "200":
          description: OK
`

func TestResponseExpectation_NoContentScenario(t *testing.T) {
	check := OperationExpectation{
		Path:   "/x",
		Method: "get",
		Responses: []ResponseExpectation{{
			Status:      "200",
			Description: "OK",
			NoContent:   true,
		}},
	}

	doc := testsupport.ParseContract(t, noContentDoc)
	report := NewRunner().Run(context.Background(), doc, check)
	if !report.Passed() {
		t.Fatalf("expected pass, got failures: %v", report.Err())
	}

	mutated := strings.Replace(noContentDoc, "description: OK\n", "description: OK\n          content: {}\n", 1)
	doc = testsupport.ParseContract(t, mutated)
	report = NewRunner().Run(context.Background(), doc, check)

	failures := report.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected exactly one failure, got %v", idsAndStatus(report.Results))
	}
	if failures[0].ID != "response.no-content" {
		t.Fatalf("failure id = %q, want response.no-content", failures[0].ID)
	}
	var mismatch *MismatchError
	if !errors.As(failures[0].Err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %T", failures[0].Err)
	}
	if mismatch.Actual != "empty mapping" {
		t.Fatalf("actual = %v, want empty mapping", mismatch.Actual)
	}
}

const orderedDoc = `openapi: 3.0.3
paths:
  /v2/node/{nodeID}/a: {}
  /v2/node/{nodeID}/b: {}
  /v2/node/{nodeID}/target: {}
  /v2/other: {}
`

const misorderedDoc = `openapi: 3.0.3
paths:
  /v2/node/{nodeID}/target: {}
  /v2/node/{nodeID}/a: {}
  /v2/node/{nodeID}/b: {}
`

func TestCheckOrdering(t *testing.T) {
	doc := testsupport.ParseContract(t, orderedDoc)
	if errs := CheckOrdering(doc, "/v2/node/{nodeID}/target", ""); len(errs) != 0 {
		t.Fatalf("expected ordered document to pass, got %v", errs)
	}

	want := []string{"/v2/node/{nodeID}/a", "/v2/node/{nodeID}/b"}
	if diff := cmp.Diff(want, Siblings(doc, "/v2/node/{nodeID}/target", "")); diff != "" {
		t.Fatalf("siblings mismatch (-want +got):\n%s", diff)
	}

	doc = testsupport.ParseContract(t, misorderedDoc)
	errs := CheckOrdering(doc, "/v2/node/{nodeID}/target", "")
	if len(errs) != 2 {
		t.Fatalf("expected two ordering errors, got %v", errs)
	}
	var ordering *OrderingError
	if !errors.As(errs[0], &ordering) {
		t.Fatalf("expected *OrderingError, got %T", errs[0])
	}
	wantErr := &OrderingError{Path: "/v2/node/{nodeID}/target", PathIndex: 0, Sibling: "/v2/node/{nodeID}/a", SiblingIndex: 1}
	if diff := cmp.Diff(wantErr, ordering); diff != "" {
		t.Fatalf("ordering error mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckOrdering_NoSiblings(t *testing.T) {
	doc := testsupport.ParseContract(t, `openapi: 3.0.3
paths:
  /health: {}
`)
	results := OrderingExpectation{Path: "/health"}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"path.ordering:pass"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}

	doc = testsupport.ParseContract(t, `openapi: 3.0.3
paths:
  /v2/node/{nodeID}/target: {}
  /v2/other: {}
`)
	results = OrderingExpectation{Path: "/v2/node/{nodeID}/target"}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"path.ordering:pass"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestOrderingExpectation_ExplicitPredecessors(t *testing.T) {
	doc := testsupport.ParseContract(t, misorderedDoc)
	results := OrderingExpectation{
		Path:  "/v2/node/{nodeID}/target",
		After: []string{"/v2/node/{nodeID}/a"},
	}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"path.ordering:fail"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
	if !strings.Contains(results[0].Message, "index 0") || !strings.Contains(results[0].Message, "index 1") {
		t.Fatalf("message should carry both indices, got %q", results[0].Message)
	}
}

func TestOrderingExpectation_MissingTarget(t *testing.T) {
	doc := testsupport.ParseContract(t, orderedDoc)
	results := OrderingExpectation{Path: "/v2/node/{nodeID}/missing"}.Evaluate(context.Background(), doc)
	if len(results) != 1 || results[0].Passed() {
		t.Fatalf("expected a single failure, got %v", idsAndStatus(results))
	}
	var notFound *NotFoundError
	if !errors.As(results[0].Err, &notFound) || notFound.Key != "/v2/node/{nodeID}/missing" {
		t.Fatalf("expected NotFoundError for missing path, got %v", results[0].Err)
	}
}

const schemaDoc = `openapi: 3.0.3
paths:
  /pets:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        kind:
          type: string
          enum: [dog, cat, bird]
        born:
          type: string
          format: date
        owner:
          $ref: '#/components/schemas/Owner'
        notes: {}
    Owner:
      type: object
      properties:
        id:
          type: string
`

func TestSchemaExpectation(t *testing.T) {
	doc := testsupport.ParseContract(t, schemaDoc)

	check := SchemaExpectation{
		Schema:   ResponseSchema("/pets", "GET", "200"),
		Type:     "object",
		Required: []string{"name", "kind"},
		Properties: []PropertyExpectation{
			{Name: "kind", Type: "string", Enum: []string{"bird", "cat", "dog"}},
			{Name: "born", Format: "date-time"},
			{Name: "owner", Ref: "#/components/schemas/Owner", Type: "object"},
			{Name: "missing"},
		},
		Present: []string{"notes"},
		Absent:  []string{"notes", "legacy"},
	}

	results := check.Evaluate(context.Background(), doc)
	want := []string{
		"schema.type:pass",
		"schema.required:pass",
		"schema.required:fail",
		"schema.property.type:pass",
		"schema.property.enum:pass",
		"schema.property.format:fail",
		"schema.property.ref:pass",
		"schema.property.type:pass",
		"schema.property:fail",
		"schema.present:pass",
		"schema.absent:fail",
		"schema.absent:pass",
	}
	if diff := cmp.Diff(want, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}

	var mismatch *MismatchError
	if !errors.As(results[10].Err, &mismatch) || mismatch.Actual != "present with empty definition" {
		t.Fatalf("expected empty-definition mismatch, got %v", results[10].Err)
	}
}

func TestSchemaExpectation_EnumOrderIndependent(t *testing.T) {
	if !SameSet([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatalf("expected sets to match")
	}
	if SameSet([]string{"a", "b"}, []string{"a", "c"}) {
		t.Fatalf("expected sets to differ")
	}

	doc := testsupport.ParseContract(t, schemaDoc)
	results := SchemaExpectation{
		Schema:     Component("Pet"),
		Properties: []PropertyExpectation{{Name: "kind", Enum: []string{"dog", "cat"}}},
	}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"schema.property.enum:fail"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
	if got := results[0].Message; !strings.Contains(got, `["bird", "cat", "dog"]`) {
		t.Fatalf("message should list actual enum, got %q", got)
	}
}

func TestSchemaExpectation_MissingSchema(t *testing.T) {
	doc := testsupport.ParseContract(t, schemaDoc)
	results := SchemaExpectation{Schema: Component("Ghost"), Type: "object"}.Evaluate(context.Background(), doc)
	if len(results) != 1 || results[0].ID != "schema.exists" {
		t.Fatalf("unexpected results %v", idsAndStatus(results))
	}
	var notFound *NotFoundError
	if !errors.As(results[0].Err, &notFound) || notFound.Key != "Ghost" {
		t.Fatalf("expected NotFoundError for Ghost, got %v", results[0].Err)
	}
}

const operationDoc = `openapi: 3.0.3
paths:
  /items/{id}:
    parameters:
      - $ref: '#/components/parameters/ItemID'
    put:
      operationId: putItem
      summary: Replace item
      description: |
        Replaces the item.

        **Permissions:** <code>items:write</code>
      tags: [items]
      parameters:
        - name: dryRun
          in: query
          schema:
            type: boolean
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Item'
      responses:
        "200":
          description: Item replaced
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Item'
        "404":
          description: Item not found
components:
  parameters:
    ItemID:
      name: id
      in: path
      required: true
      schema:
        type: string
  schemas:
    Item:
      type: object
      properties:
        id:
          type: string
`

const aliasDoc = `openapi: 3.0.3
paths:
  /things:
    get:
      responses:
        "200":
          description: OK
components:
  schemas:
    Thing:
      type: object
      properties:
        s:
          $ref: '#/components/schemas/StateAlias'
        legacy:
    StateAlias:
      $ref: '#/components/schemas/State'
    State:
      type: string
      enum: [a, b]
    Dangling:
      $ref: '#/components/schemas/Missing'
`

func TestSchemaExpectation_FollowsComponentAliases(t *testing.T) {
	doc := testsupport.ParseContract(t, aliasDoc)

	results := SchemaExpectation{
		Schema: Component("Thing"),
		Properties: []PropertyExpectation{
			{Name: "s", Ref: "#/components/schemas/StateAlias", Type: "string", Enum: []string{"b", "a"}},
		},
	}.Evaluate(context.Background(), doc)
	want := []string{
		"schema.property.ref:pass",
		"schema.property.type:pass",
		"schema.property.enum:pass",
	}
	if diff := cmp.Diff(want, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}

	results = SchemaExpectation{Schema: Component("StateAlias"), Type: "string"}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"schema.type:pass"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("alias component should resolve to its target (-want +got):\n%s", diff)
	}

	results = SchemaExpectation{Schema: Component("Dangling"), Type: "string"}.Evaluate(context.Background(), doc)
	var notFound *NotFoundError
	if len(results) != 1 || results[0].ID != "schema.exists" || !errors.As(results[0].Err, &notFound) {
		t.Fatalf("expected schema.exists not found, got %v", idsAndStatus(results))
	}
	if notFound.Key != "#/components/schemas/Missing" {
		t.Fatalf("not found key = %q", notFound.Key)
	}
}

func TestSchemaExpectation_NullPropertyIsPresentButEmpty(t *testing.T) {
	doc := testsupport.ParseContract(t, aliasDoc)

	results := SchemaExpectation{Schema: Component("Thing"), Absent: []string{"legacy"}}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"schema.absent:fail"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
	var mismatch *MismatchError
	if !errors.As(results[0].Err, &mismatch) || mismatch.Actual != "present with empty definition" {
		t.Fatalf("expected empty-definition mismatch, got %v", results[0].Err)
	}
}

func TestOperationExpectation(t *testing.T) {
	doc := testsupport.ParseContract(t, operationDoc)
	required := true

	check := OperationExpectation{
		Path:               "/items/{id}",
		Method:             "PUT",
		OperationID:        "putItem",
		Summary:            "Replace item",
		Tags:               []string{"items", "admin"},
		PermissionsContain: []string{"items:write"},
		Parameters:         []string{"dryRun", "id"},
		Request: &RequestExpectation{
			Required:  &required,
			MediaType: "application/json",
			SchemaRef: "#/components/schemas/Item",
		},
		Responses: []ResponseExpectation{
			{Status: "200", SchemaRef: "#/components/schemas/Item"},
			{Status: "404", DescriptionContains: "NOT FOUND", NoContent: true},
			{Status: "409"},
		},
	}

	results := check.Evaluate(context.Background(), doc)
	want := []string{
		"operation.exists:pass",
		"operation.id:pass",
		"operation.summary:pass",
		"operation.tag:pass",
		"operation.tag:fail",
		"operation.permissions:pass",
		"operation.parameter:pass",
		"operation.parameter:fail",
		"request.exists:pass",
		"request.required:pass",
		"request.media-type:pass",
		"request.schema:pass",
		"response.exists:pass",
		"response.schema:pass",
		"response.exists:pass",
		"response.description:pass",
		"response.no-content:pass",
		"response.exists:fail",
	}
	if diff := cmp.Diff(want, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestPathExpectation_Parameters(t *testing.T) {
	doc := testsupport.ParseContract(t, operationDoc)
	results := PathExpectation{
		Path:          "/items/{id}",
		Methods:       []string{"put"},
		AbsentMethods: []string{"get"},
		Parameters:    []string{"#/components/parameters/ItemID", "id"},
	}.Evaluate(context.Background(), doc)

	want := []string{
		"path.exists:pass",
		"path.method:pass",
		"path.method-absent:pass",
		"path.parameter:pass",
		"path.parameter:pass",
	}
	if diff := cmp.Diff(want, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestOperationExpectation_Absent(t *testing.T) {
	doc := testsupport.ParseContract(t, operationDoc)
	results := OperationExpectation{Path: "/items/{id}", Method: "get", Absent: true}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"operation.absent:pass"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
	results = OperationExpectation{Path: "/items/{id}", Method: "put", Absent: true}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"operation.absent:fail"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

const brokenDoc = `openapi: 3.0.3
paths:
  /a:
    get:
      operationId: dup
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Missing'
        "600":
          description: Nope
  /b:
    get:
      operationId: dup
      responses:
        2XX:
          description: Fine
        default:
          description: Error
components:
  schemas:
    Thing:
      type: object
      required: [id, name]
      properties:
        id:
          type: string
`

func TestIntegrity(t *testing.T) {
	doc := testsupport.ParseContract(t, brokenDoc)
	report := NewRunner(WithSource("broken.yaml")).Run(context.Background(), doc, Integrity())

	want := []string{
		"integrity.ref:fail",
		"integrity.status:fail",
		"integrity.required:fail",
		"integrity.operation-id:fail",
	}
	if diff := cmp.Diff(want, idsAndStatus(report.Results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}

	var notFound *NotFoundError
	if !errors.As(report.Results[0].Err, &notFound) || notFound.Key != "#/components/schemas/Missing" {
		t.Fatalf("expected dangling reference error, got %v", report.Results[0].Err)
	}
	if !strings.Contains(report.Results[2].Message, `"name"`) {
		t.Fatalf("required failure should name the property, got %q", report.Results[2].Message)
	}

	err := report.Err()
	var reportErr *ReportError
	if !errors.As(err, &reportErr) || len(reportErr.Failures) != 4 {
		t.Fatalf("expected ReportError with four failures, got %v", err)
	}
}

func TestIntegrity_CleanDocument(t *testing.T) {
	doc := testsupport.ParseContract(t, operationDoc)
	report := NewRunner().Run(context.Background(), doc, Integrity())
	if !report.Passed() {
		t.Fatalf("expected clean document, got %v", report.Err())
	}
	want := []string{
		"integrity.operation-id:pass",
		"integrity.ref:pass",
		"integrity.required:pass",
		"integrity.status:pass",
	}
	sorted := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(want, idsAndStatus(report.Results), sorted); diff != "" {
		t.Fatalf("expected one result per invariant (-want +got):\n%s", diff)
	}
}

func TestValidStatusKey(t *testing.T) {
	cases := map[string]bool{
		"100": true, "200": true, "599": true, "default": true, "1XX": true, "5XX": true,
		"099": false, "600": false, "6XX": false, "2xx": false, "20": false, "abc": false, "": false,
	}
	for key, want := range cases {
		if got := ValidStatusKey(key); got != want {
			t.Fatalf("ValidStatusKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestSchemaParity(t *testing.T) {
	doc := testsupport.ParseContract(t, operationDoc)
	results := SchemaParity{
		Left:  ResponseSchema("/items/{id}", "put", "200"),
		Right: RequestSchema("/items/{id}", "put"),
	}.Evaluate(context.Background(), doc)
	if diff := cmp.Diff([]string{"schema.parity:pass"}, idsAndStatus(results)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestRunner_RunsEveryCheck(t *testing.T) {
	doc := testsupport.ParseContract(t, noContentDoc)
	calls := 0
	counting := CheckFunc{Label: "count", Fn: func(context.Context, *pkgopenapi.Contract) []Result {
		calls++
		return []Result{fail("custom", "/x", &NotFoundError{Kind: "thing", Key: "k"})}
	}}

	report := NewRunner().Run(context.Background(), doc, counting, nil, counting)
	if calls != 2 {
		t.Fatalf("expected both checks to run, got %d", calls)
	}
	passed, failed := report.Counts()
	if passed != 0 || failed != 2 {
		t.Fatalf("counts = %d/%d, want 0/2", passed, failed)
	}
	if got := len(report.Find("custom")); got != 2 {
		t.Fatalf("Find returned %d results", got)
	}
}

func TestRunner_StopsOnCancelledContext(t *testing.T) {
	doc := testsupport.ParseContract(t, noContentDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := NewRunner().Run(ctx, doc, Integrity())
	if len(report.Results) != 0 {
		t.Fatalf("expected no results after cancellation, got %v", idsAndStatus(report.Results))
	}
}
