// Package apicontract loads OpenAPI contract documents and validates their
// shape against declarative expectations.
//
// A typical run loads the contract once, then evaluates every check and
// reports all failures together:
//
//	report, err := apicontract.Validate(ctx, openapi.SourceFromFile("openapi.yaml"), []contract.Check{
//		contract.Integrity(),
//		contract.OrderingExpectation{Path: "/v2/node/{nodeID}/lifecycle-state"},
//	})
//
// err is non-nil only when the contract cannot be loaded; assertion failures
// live in the report.
package apicontract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	internalLoader "github.com/goliatone/go-apicontract/internal/openapi/loader"
	internalParser "github.com/goliatone/go-apicontract/internal/openapi/parser"
	"github.com/goliatone/go-apicontract/pkg/contract"
	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
	"github.com/goliatone/go-apicontract/pkg/suite"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// Option configures LoadContract, Validate and ValidateSuite.
type Option func(*settings)

type settings struct {
	loader     []pkgopenapi.LoaderOption
	parser     []pkgopenapi.ParserOption
	runner     []contract.RunnerOption
	checks     []contract.Check
	structural bool
}

// WithLoaderOptions forwards options to the document loader.
func WithLoaderOptions(options ...pkgopenapi.LoaderOption) Option {
	return func(s *settings) {
		s.loader = append(s.loader, options...)
	}
}

// WithParserOptions forwards options to the parser.
func WithParserOptions(options ...pkgopenapi.ParserOption) Option {
	return func(s *settings) {
		s.parser = append(s.parser, options...)
	}
}

// WithRunnerOptions forwards options to the check runner.
func WithRunnerOptions(options ...contract.RunnerOption) Option {
	return func(s *settings) {
		s.runner = append(s.runner, options...)
	}
}

// WithStructuralCheck adds the OpenAPI structure check to a run.
func WithStructuralCheck(enabled bool) Option {
	return func(s *settings) {
		s.structural = enabled
	}
}

// WithExtraChecks appends checks after the suite's own.
func WithExtraChecks(checks ...contract.Check) Option {
	return func(s *settings) {
		s.checks = append(s.checks, checks...)
	}
}

func resolve(options []Option) *settings {
	s := &settings{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// SourceFor maps a location string to a Source: http(s) URLs become URL
// sources, anything else a file path.
func SourceFor(location string) (pkgopenapi.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("apicontract: contract location is required")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return pkgopenapi.SourceFromURL(location)
	}
	return pkgopenapi.SourceFromFile(location), nil
}

// LoadContract reads and parses src. Read failures, malformed syntax and
// unrecognised shapes are all returned as *openapi.LoadError; a parse failure
// additionally unwraps to *openapi.ParseError.
func LoadContract(ctx context.Context, src pkgopenapi.Source, options ...Option) (*pkgopenapi.Contract, pkgopenapi.Document, error) {
	s := resolve(options)
	return load(ctx, src, s)
}

func load(ctx context.Context, src pkgopenapi.Source, s *settings) (*pkgopenapi.Contract, pkgopenapi.Document, error) {
	doc, err := NewLoader(s.loader...).Load(ctx, src)
	if err != nil {
		return nil, pkgopenapi.Document{}, err
	}
	parsed, err := NewParser(s.parser...).Parse(ctx, doc)
	if err != nil {
		var loadErr *pkgopenapi.LoadError
		if errors.As(err, &loadErr) {
			return nil, doc, err
		}
		return nil, doc, &pkgopenapi.LoadError{Location: doc.Location(), Err: err}
	}
	return parsed, doc, nil
}

// Validate loads src and evaluates checks against it. The returned error is
// non-nil only for load failures, in which case no check has run.
func Validate(ctx context.Context, src pkgopenapi.Source, checks []contract.Check, options ...Option) (contract.Report, error) {
	s := resolve(options)
	parsed, doc, err := load(ctx, src, s)
	if err != nil {
		return contract.Report{}, err
	}

	all := append([]contract.Check(nil), checks...)
	if s.structural {
		all = append(all, contract.Structural(doc.Raw()))
	}
	all = append(all, s.checks...)

	runnerOptions := append([]contract.RunnerOption{contract.WithSource(doc.Location())}, s.runner...)
	return contract.NewRunner(runnerOptions...).Run(ctx, parsed, all...), nil
}

// ValidateSuite validates the contract named by st with its checks.
func ValidateSuite(ctx context.Context, st *suite.Suite, options ...Option) (contract.Report, error) {
	if st == nil {
		return contract.Report{}, errors.New("apicontract: suite is nil")
	}
	src, err := SourceFor(st.Contract)
	if err != nil {
		return contract.Report{}, fmt.Errorf("apicontract: suite %s: %w", st.Source, err)
	}

	s := resolve(options)
	parsed, doc, err := load(ctx, src, s)
	if err != nil {
		return contract.Report{}, err
	}

	checks := st.Checks(doc.Raw())
	if s.structural && !st.Structure {
		checks = append(checks, contract.Structural(doc.Raw()))
	}
	checks = append(checks, s.checks...)

	runnerOptions := append([]contract.RunnerOption{contract.WithSource(doc.Location())}, s.runner...)
	return contract.NewRunner(runnerOptions...).Run(ctx, parsed, checks...), nil
}
