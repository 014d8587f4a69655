// Package explore walks a parsed contract interactively: pick a path, pick a
// method, read the operation summary.
package explore

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

const (
	quitOption = "[quit]"
	backOption = "[back]"
)

// Option configures an Explorer.
type Option func(*Explorer)

// WithPromptDriver overrides the survey-backed driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Explorer) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithPageSize sets how many options a select prompt shows at once.
func WithPageSize(size int) Option {
	return func(e *Explorer) {
		e.pageSize = size
	}
}

// Explorer browses one contract.
type Explorer struct {
	doc      *pkgopenapi.Contract
	driver   PromptDriver
	pageSize int
	stripper *bluemonday.Policy
}

// New constructs an Explorer for doc.
func New(doc *pkgopenapi.Contract, options ...Option) *Explorer {
	e := &Explorer{
		doc:      doc,
		pageSize: 15,
		stripper: bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	return e
}

// Run loops until the user quits or declines to continue. ErrAborted is
// returned when the prompt is interrupted.
func (e *Explorer) Run(ctx context.Context) error {
	if e.doc == nil || e.doc.Paths.Len() == 0 {
		return ErrEmptyContract
	}
	paths := e.doc.Paths.Keys()

	for {
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:  "Path",
			Options:  append(append([]string(nil), paths...), quitOption),
			PageSize: e.pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(paths) {
			return nil
		}

		item, _ := e.doc.Path(paths[idx])
		op, err := e.pickOperation(ctx, item)
		if err != nil {
			return err
		}
		if op == nil {
			continue
		}
		if err := e.driver.Info(ctx, e.Describe(item, op)); err != nil {
			return err
		}

		again, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Explore another operation?", Default: true})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func (e *Explorer) pickOperation(ctx context.Context, item *pkgopenapi.PathItem) (*pkgopenapi.Operation, error) {
	methods := item.Operations.Keys()
	if len(methods) == 0 {
		return nil, e.driver.Info(ctx, fmt.Sprintf("%s declares no operations", item.Path))
	}
	options := make([]string, 0, len(methods)+1)
	for _, m := range methods {
		options = append(options, strings.ToUpper(m))
	}
	options = append(options, backOption)

	idx, err := e.driver.Select(ctx, SelectConfig{Message: "Method for " + item.Path, Options: options})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(methods) {
		return nil, nil
	}
	op, _ := item.Operation(methods[idx])
	return op, nil
}

// Describe renders a plain-text summary of op. Markup in descriptions is
// stripped.
func (e *Explorer) Describe(item *pkgopenapi.PathItem, op *pkgopenapi.Operation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", strings.ToUpper(op.Method), op.Path)
	if op.OperationID != "" {
		fmt.Fprintf(&b, " (%s)", op.OperationID)
	}
	if op.Deprecated {
		b.WriteString(" [deprecated]")
	}
	b.WriteString("\n")

	e.line(&b, "Summary", op.Summary)
	e.line(&b, "Description", op.Description)
	e.line(&b, "Permissions", op.Permissions)
	e.line(&b, "Tags", strings.Join(op.Tags, ", "))

	var params []pkgopenapi.ParameterSpec
	if item != nil {
		params = append(params, item.Parameters...)
	}
	params = append(params, op.Parameters...)
	if len(params) > 0 {
		b.WriteString("Parameters:\n")
		for _, spec := range params {
			b.WriteString("  - " + e.parameter(spec) + "\n")
		}
	}

	if op.RequestBody != nil {
		b.WriteString("Request:\n")
		body, ok := e.doc.ResolveRequestBody(op.RequestBody)
		switch {
		case !ok:
			fmt.Fprintf(&b, "  unresolved %s\n", op.RequestBody.Ref)
		default:
			if body.Required {
				b.WriteString("  required\n")
			}
			writeContent(&b, &body.Content)
		}
	}

	if op.Responses.Len() > 0 {
		b.WriteString("Responses:\n")
		for status, declared := range op.Responses.All() {
			resp, ok := e.doc.ResolveResponse(declared)
			if !ok {
				fmt.Fprintf(&b, "  %s unresolved %s\n", status, declared.Ref)
				continue
			}
			fmt.Fprintf(&b, "  %s %s\n", status, e.plain(resp.Description))
			writeContent(&b, resp.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Explorer) line(b *strings.Builder, label, value string) {
	value = e.plain(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func (e *Explorer) plain(text string) string {
	return strings.TrimSpace(html.UnescapeString(e.stripper.Sanitize(text)))
}

func (e *Explorer) parameter(spec pkgopenapi.ParameterSpec) string {
	param, ok := e.doc.ResolveParameter(spec)
	if !ok {
		if ref, isRef := spec.(pkgopenapi.ParameterRef); isRef {
			return "unresolved " + ref.Ref
		}
		return "unknown parameter"
	}
	out := fmt.Sprintf("%s (%s", param.Name, param.In)
	if param.Required {
		out += ", required"
	}
	out += ")"
	if ref, isRef := spec.(pkgopenapi.ParameterRef); isRef {
		out += " via " + ref.Ref
	}
	return out
}

func writeContent(b *strings.Builder, content *pkgopenapi.OrderedMap[*pkgopenapi.MediaType]) {
	for name, mt := range content.All() {
		target := pkgopenapi.RefOf(mt.Schema)
		switch {
		case target != "":
		case mt.Schema != nil:
			target = "inline schema"
		default:
			target = "no schema"
		}
		fmt.Fprintf(b, "      %s -> %s\n", name, target)
	}
}
