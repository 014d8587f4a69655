// Package report renders contract validation reports as text, JSON or HTML.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goliatone/go-apicontract/pkg/contract"
)

// Format selects a report writer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatHTML}

// ParseFormat normalises name into a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("report: unsupported format %q (want text, json or html)", name)
	}
}

// Options tunes the writers.
type Options struct {
	// Verbose includes passing assertions in text output.
	Verbose bool
	// Title overrides the HTML page title.
	Title string
}

// Write renders r in the requested format.
func Write(w io.Writer, r contract.Report, format Format, opts Options) error {
	if w == nil {
		return errors.New("report: writer is nil")
	}
	switch format {
	case FormatText, "":
		return Text(w, r, opts)
	case FormatJSON:
		return JSON(w, r)
	case FormatHTML:
		return HTML(w, r, opts)
	default:
		return fmt.Errorf("report: unsupported format %q", format)
	}
}

// Kind classifies a failure by its error type.
func Kind(err error) string {
	var (
		notFound *contract.NotFoundError
		mismatch *contract.MismatchError
		ordering *contract.OrderingError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return "not-found"
	case errors.As(err, &mismatch):
		return "mismatch"
	case errors.As(err, &ordering):
		return "ordering"
	default:
		return "error"
	}
}

// sortedFailures orders failures by scope, id, then message.
func sortedFailures(r contract.Report) []contract.Result {
	failures := r.Failures()
	sort.SliceStable(failures, func(i, j int) bool {
		a, b := failures[i], failures[j]
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Message < b.Message
	})
	return failures
}
