// Package lint checks raw contract documents for OpenAPI structural
// conformance using kin-openapi.
package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Stage identifies where structural validation stopped.
type Stage string

const (
	StageLoad     Stage = "load"
	StageValidate Stage = "validate"
)

// Error wraps a kin-openapi failure with the stage that produced it.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("openapi lint: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options tunes validation.
type Options struct {
	// ValidateExamples checks examples against their schemas.
	ValidateExamples bool
}

// Document loads raw without following external references and validates it.
// It returns nil when the document is structurally sound, otherwise *Error.
func Document(ctx context.Context, raw []byte, opts Options) error {
	if len(raw) == 0 {
		return &Error{Stage: StageLoad, Err: errors.New("document payload is empty")}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return &Error{Stage: StageLoad, Err: err}
	}

	var validation []openapi3.ValidationOption
	if !opts.ValidateExamples {
		validation = append(validation, openapi3.DisableExamplesValidation())
	}
	if err := spec.Validate(ctx, validation...); err != nil {
		return &Error{Stage: StageValidate, Err: err}
	}
	return nil
}
