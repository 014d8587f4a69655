package suite

import (
	"github.com/goliatone/go-apicontract/pkg/contract"
)

// Checks converts the suite into contract checks. raw is the contract
// payload, used only when structural validation is enabled.
func (s *Suite) Checks(raw []byte) []contract.Check {
	var checks []contract.Check
	if s.Integrity {
		checks = append(checks, contract.Integrity())
	}
	if s.Structure {
		checks = append(checks, contract.Structural(raw))
	}
	for _, p := range s.Paths {
		checks = append(checks, contract.PathExpectation{
			Path:          p.Path,
			Absent:        p.Absent,
			Methods:       p.Methods,
			AbsentMethods: p.AbsentMethods,
			Parameters:    p.Parameters,
		})
	}
	for _, o := range s.Ordering {
		checks = append(checks, contract.OrderingExpectation{Path: o.Path, Prefix: o.Prefix, After: o.After})
	}
	for _, op := range s.Operations {
		checks = append(checks, operationCheck(op))
	}
	for _, sc := range s.Schemas {
		checks = append(checks, schemaCheck(sc))
	}
	for _, p := range s.Parity {
		checks = append(checks, contract.SchemaParity{Left: p.Left.locator(), Right: p.Right.locator(), Ignore: p.Ignore})
	}
	return checks
}

func operationCheck(op OperationSpec) contract.OperationExpectation {
	out := contract.OperationExpectation{
		Path:               op.Path,
		Method:             op.Method,
		Absent:             op.Absent,
		OperationID:        op.OperationID,
		Summary:            op.Summary,
		Tags:               op.Tags,
		PermissionsContain: op.PermissionsContain,
		Parameters:         op.Parameters,
	}
	if op.Request != nil {
		out.Request = &contract.RequestExpectation{
			Absent:    op.Request.Absent,
			Required:  op.Request.Required,
			MediaType: op.Request.MediaType,
			SchemaRef: op.Request.SchemaRef,
		}
	}
	for _, resp := range op.Responses {
		out.Responses = append(out.Responses, contract.ResponseExpectation{
			Status:              resp.Status,
			Description:         resp.Description,
			DescriptionContains: resp.DescriptionContains,
			MediaType:           resp.MediaType,
			SchemaRef:           resp.SchemaRef,
			NoContent:           resp.NoContent,
		})
	}
	return out
}

func schemaCheck(sc SchemaSpec) contract.SchemaExpectation {
	out := contract.SchemaExpectation{
		Schema:   sc.LocatorSpec.locator(),
		Type:     sc.Type,
		Required: sc.Required,
		Present:  sc.Present,
		Absent:   sc.Absent,
	}
	for _, p := range sc.Properties {
		out.Properties = append(out.Properties, contract.PropertyExpectation(p))
	}
	return out
}

func (l LocatorSpec) locator() contract.SchemaLocator {
	return contract.SchemaLocator(l)
}
