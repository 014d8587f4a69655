// Command contractcheck validates an OpenAPI contract against an expectation
// suite and prints a report.
//
// Exit codes: 0 when every assertion passes, 1 when any fails, 2 when the
// configuration, suite or contract cannot be loaded.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-apicontract"
	"github.com/goliatone/go-apicontract/internal/config"
	"github.com/goliatone/go-apicontract/internal/logger"
	"github.com/goliatone/go-apicontract/pkg/contract"
	"github.com/goliatone/go-apicontract/pkg/explore"
	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
	"github.com/goliatone/go-apicontract/pkg/report"
	"github.com/goliatone/go-apicontract/pkg/suite"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitBadLoad = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cfg, err := config.Load("contractcheck", args, getenv, stderr)
	if err != nil {
		if config.IsHelp(err) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitBadLoad
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadLoad
	}

	options := contractOptions(cfg, log)

	var st *suite.Suite
	if cfg.Suite != "" {
		if st, err = suite.Load(cfg.Suite); err != nil {
			log.Error().Err(err).Str("suite", cfg.Suite).Msg("load suite")
			fmt.Fprintln(stderr, err)
			return exitBadLoad
		}
		if cfg.Contract != "" {
			st.Contract = cfg.Contract
		}
	}

	if cfg.Explore {
		return runExplore(ctx, cfg, st, options, stderr, log)
	}

	var rep contract.Report
	if st != nil {
		log.Info().Str("suite", st.Name).Str("contract", st.Contract).Msg("validating contract")
		rep, err = apicontract.ValidateSuite(ctx, st, options...)
	} else {
		src, srcErr := apicontract.SourceFor(cfg.Contract)
		if srcErr != nil {
			fmt.Fprintln(stderr, srcErr)
			return exitBadLoad
		}
		log.Info().Str("contract", cfg.Contract).Msg("validating contract integrity")
		rep, err = apicontract.Validate(ctx, src, []contract.Check{contract.Integrity()}, options...)
	}
	if err != nil {
		log.Error().Err(err).Msg("load contract")
		fmt.Fprintln(stderr, err)
		return exitBadLoad
	}

	if err := writeReport(cfg, rep, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadLoad
	}
	if !rep.Passed() {
		return exitFailed
	}
	return exitOK
}

func contractOptions(cfg *config.Config, log zerolog.Logger) []apicontract.Option {
	var loaderOpts []pkgopenapi.LoaderOption
	if cfg.AllowHTTP {
		loaderOpts = append(loaderOpts, pkgopenapi.WithHTTPFallback(cfg.HTTPTimeout))
	}
	var parserOpts []pkgopenapi.ParserOption
	if cfg.PermissionsMarker != "" {
		parserOpts = append(parserOpts, pkgopenapi.WithPermissionsMarker(cfg.PermissionsMarker))
	}
	return []apicontract.Option{
		apicontract.WithLoaderOptions(loaderOpts...),
		apicontract.WithParserOptions(parserOpts...),
		apicontract.WithRunnerOptions(contract.WithLogger(log)),
		apicontract.WithStructuralCheck(cfg.Structural),
	}
}

func runExplore(ctx context.Context, cfg *config.Config, st *suite.Suite, options []apicontract.Option, stderr io.Writer, log zerolog.Logger) int {
	location := cfg.Contract
	if st != nil {
		location = st.Contract
	}
	src, err := apicontract.SourceFor(location)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadLoad
	}
	doc, _, err := apicontract.LoadContract(ctx, src, options...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadLoad
	}

	err = explore.New(doc).Run(ctx)
	switch {
	case err == nil, errors.Is(err, explore.ErrAborted):
		return exitOK
	default:
		log.Error().Err(err).Msg("explore contract")
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
}

func writeReport(cfg *config.Config, rep contract.Report, stdout io.Writer) error {
	opts := report.Options{Verbose: cfg.Verbose}
	if cfg.Output == "" {
		return report.Write(stdout, rep, cfg.Format, opts)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("contractcheck: create report: %w", err)
	}
	if err := report.Write(f, rep, cfg.Format, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
