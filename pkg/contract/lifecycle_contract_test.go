package contract_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-apicontract/pkg/contract"
	"github.com/goliatone/go-apicontract/pkg/testsupport"
)

const lifecyclePath = "/v2/node/{nodeID}/lifecycle-state"

// readSuite expects the lifecycle endpoint to report status through GET.
func readSuite(raw []byte) []contract.Check {
	return []contract.Check{
		contract.Integrity(),
		contract.Structural(raw),
		contract.PathExpectation{
			Path:       lifecyclePath,
			Methods:    []string{"get"},
			Parameters: []string{"#/components/parameters/NodeID"},
		},
		contract.OrderingExpectation{Path: lifecyclePath},
		contract.OperationExpectation{
			Path:               lifecyclePath,
			Method:             "get",
			Tags:               []string{"nodes"},
			PermissionsContain: []string{"node:read"},
			Responses: []contract.ResponseExpectation{
				{Status: "200", Description: "OK", SchemaRef: "#/components/schemas/LifecycleStatus"},
				{Status: "404", DescriptionContains: "not found", NoContent: true},
			},
		},
		contract.SchemaExpectation{
			Schema:   contract.Component("LifecycleStatus"),
			Type:     "object",
			Required: []string{"state", "phase"},
			Properties: []contract.PropertyExpectation{
				{Name: "state", Type: "string", Enum: []string{"retired", "maintenance", "draining", "active"}},
				{Name: "phase", Type: "string", Enum: []string{"failed", "completed", "running", "pending"}},
				{Name: "lastTransition", Type: "string", Format: "date-time"},
				{Name: "message", Type: "string"},
			},
		},
	}
}

// writeSuite expects the lifecycle endpoint to accept a new state through PUT
// and no longer expose GET.
func writeSuite(raw []byte) []contract.Check {
	required := true
	return []contract.Check{
		contract.Integrity(),
		contract.Structural(raw),
		contract.PathExpectation{
			Path:          lifecyclePath,
			Methods:       []string{"put"},
			AbsentMethods: []string{"get"},
		},
		contract.OrderingExpectation{Path: lifecyclePath},
		contract.OperationExpectation{
			Path:               lifecyclePath,
			Method:             "put",
			PermissionsContain: []string{"node:write", "admin"},
			Request: &contract.RequestExpectation{
				Required:  &required,
				MediaType: "application/json",
				SchemaRef: "#/components/schemas/LifecycleStateRequest",
			},
			Responses: []contract.ResponseExpectation{
				{Status: "204", NoContent: true},
				{Status: "400", DescriptionContains: "invalid"},
				{Status: "404", DescriptionContains: "not found", NoContent: true},
			},
		},
		contract.SchemaExpectation{
			Schema:   contract.RequestSchema(lifecyclePath, "put"),
			Required: []string{"lifecycleState"},
			Properties: []contract.PropertyExpectation{
				{Name: "lifecycleState", Type: "string", Enum: []string{"active", "draining", "maintenance", "retired"}},
			},
			Absent: []string{"state", "phase", "lastTransition", "message"},
		},
	}
}

func runFixture(t *testing.T, name string, suite func([]byte) []contract.Check) contract.Report {
	t.Helper()
	path := filepath.Join("testdata", name)
	doc := testsupport.LoadDocument(t, path)
	parsed := testsupport.ParseDocument(t, doc)
	return contract.NewRunner(contract.WithSource(path)).Run(context.Background(), parsed, suite(doc.Raw())...)
}

func TestLifecycleV1_ReadSuitePasses(t *testing.T) {
	report := runFixture(t, "lifecycle_v1.yaml", readSuite)
	require.NoError(t, report.Err())
	assert.NotEmpty(t, report.Find("structure.openapi"))
	assert.Len(t, report.Find("path.ordering"), 2)
}

func TestLifecycleV2_WriteSuitePasses(t *testing.T) {
	report := runFixture(t, "lifecycle_v2.yaml", writeSuite)
	require.NoError(t, report.Err())
}

func TestLifecycleVersionsAreMutuallyExclusive(t *testing.T) {
	v2AgainstRead := runFixture(t, "lifecycle_v2.yaml", readSuite)
	require.False(t, v2AgainstRead.Passed())

	var notFound *contract.NotFoundError
	failures := v2AgainstRead.Failures()
	require.True(t, errors.As(failures[0].Err, &notFound))
	assert.Equal(t, "GET", notFound.Key)

	v1AgainstWrite := runFixture(t, "lifecycle_v1.yaml", writeSuite)
	require.False(t, v1AgainstWrite.Passed())

	ids := make([]string, 0)
	for _, f := range v1AgainstWrite.Failures() {
		ids = append(ids, f.ID)
	}
	assert.Contains(t, ids, "path.method")
	assert.Contains(t, ids, "path.method-absent")
	assert.Contains(t, ids, "operation.exists")
	assert.Contains(t, ids, "schema.exists")
}

func TestLifecycle_CoexistingVariantsDiverge(t *testing.T) {
	doc := testsupport.ParseContract(t, `openapi: 3.0.3
paths:
  /v2/node/{nodeID}/lifecycle-state:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/LifecycleStatus'
    put:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/LifecycleStateRequest'
      responses:
        "204":
          description: Updated
components:
  schemas:
    LifecycleStatus:
      type: object
      properties:
        state: {type: string}
        phase: {type: string}
        lastTransition: {type: string}
        message: {type: string}
    LifecycleStateRequest:
      type: object
      properties:
        lifecycleState: {type: string}
`)

	parity := contract.SchemaParity{
		Left:  contract.ResponseSchema(lifecyclePath, "get", "200"),
		Right: contract.RequestSchema(lifecyclePath, "put"),
	}
	results := parity.Evaluate(context.Background(), doc)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())

	var mismatch *contract.MismatchError
	require.ErrorAs(t, results[0].Err, &mismatch)
	assert.Equal(t, []string{"lastTransition", "message", "phase", "state"}, mismatch.Expected)
	assert.Equal(t, []string{"lifecycleState"}, mismatch.Actual)
}
