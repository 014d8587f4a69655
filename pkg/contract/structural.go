package contract

import (
	"context"

	"github.com/goliatone/go-apicontract/internal/openapi/lint"
	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// Structural returns a check validating raw against the OpenAPI structure
// rules (required info fields, response descriptions, resolvable local
// references). Examples are not validated.
func Structural(raw []byte) Check {
	return CheckFunc{Label: "structure", Fn: func(ctx context.Context, _ *pkgopenapi.Contract) []Result {
		const id = "structure.openapi"
		if err := lint.Document(ctx, raw, lint.Options{}); err != nil {
			return []Result{fail(id, "document", err)}
		}
		return []Result{pass(id, "document", "document is structurally valid OpenAPI")}
	}}
}
