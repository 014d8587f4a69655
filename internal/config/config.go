// Package config resolves contractcheck settings from flags layered over
// environment defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-apicontract/internal/logger"
	"github.com/goliatone/go-apicontract/pkg/report"
)

// Environment variables consulted for defaults.
const (
	EnvLogLevel  = "CONTRACTCHECK_LOG_LEVEL"
	EnvLogFormat = "CONTRACTCHECK_LOG_FORMAT"
	EnvFormat    = "CONTRACTCHECK_FORMAT"
)

// Config holds the resolved command line settings.
type Config struct {
	Suite    string
	Contract string
	Format   report.Format
	Output   string
	Verbose  bool

	Structural bool
	Explore    bool

	AllowHTTP   bool
	HTTPTimeout time.Duration

	PermissionsMarker string

	LogLevel  string
	LogFormat string
}

// Load parses args (without the program name). getenv supplies environment
// defaults and may be nil. Validation problems are reported together.
func Load(name string, args []string, getenv func(string) string, usage io.Writer) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := &Config{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if usage != nil {
		fs.SetOutput(usage)
	}
	var format string
	fs.StringVar(&cfg.Suite, "suite", "", "expectation suite (YAML or JSON)")
	fs.StringVar(&cfg.Contract, "contract", "", "contract document; overrides the suite's contract")
	fs.StringVar(&format, "format", envOr(getenv, EnvFormat, string(report.FormatText)), "report format: text, json or html")
	fs.StringVar(&cfg.Output, "output", "", "write the report to this file instead of stdout")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "list passing assertions in text reports")
	fs.BoolVar(&cfg.Structural, "structural", false, "validate OpenAPI structure in addition to the suite")
	fs.BoolVar(&cfg.Explore, "explore", false, "browse the contract interactively instead of validating")
	fs.BoolVar(&cfg.AllowHTTP, "allow-http", false, "allow http(s) contract locations")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", 10*time.Second, "timeout for http(s) contract fetches")
	fs.StringVar(&cfg.PermissionsMarker, "permissions-marker", "", "delimiter introducing the permissions section of descriptions")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr(getenv, EnvLogLevel, "warn"), "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", envOr(getenv, EnvLogFormat, logger.FormatConsole), "log format: console or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 && cfg.Contract == "" {
		cfg.Contract = fs.Arg(0)
	}

	var problems []string
	parsed, err := report.ParseFormat(format)
	if err != nil {
		problems = append(problems, err.Error())
	}
	cfg.Format = parsed
	problems = append(problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("config: invalid settings:\n  %s", strings.Join(problems, "\n  "))
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var problems []string
	if c.Suite == "" && c.Contract == "" {
		problems = append(problems, "one of -suite or -contract is required")
	}
	if c.Explore && c.Output != "" {
		problems = append(problems, "-output cannot be combined with -explore")
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "-http-timeout must be positive")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", logger.FormatConsole, logger.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log format %q is not console or json", c.LogFormat))
	}
	return problems
}

// IsHelp reports whether err came from -h or -help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
