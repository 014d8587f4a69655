package report

import (
	"fmt"
	"io"

	"github.com/goliatone/go-apicontract/pkg/contract"
)

// Text writes one line per failure, sorted, followed by a summary line.
// Verbose output lists passing assertions first, in evaluation order.
func Text(w io.Writer, r contract.Report, opts Options) error {
	source := r.Source
	if source == "" {
		source = "contract"
	}

	if opts.Verbose {
		for _, res := range r.Results {
			if !res.Passed() {
				continue
			}
			if _, err := fmt.Fprintf(w, "ok   %s: %s [%s] %s\n", source, res.Scope, res.ID, res.Message); err != nil {
				return err
			}
		}
	}
	for _, res := range sortedFailures(r) {
		if _, err := fmt.Fprintf(w, "FAIL %s: %s [%s] -> %s\n", source, res.Scope, res.ID, res.Message); err != nil {
			return err
		}
	}

	passed, failed := r.Counts()
	status := "PASS"
	if failed > 0 {
		status = "FAIL"
	}
	_, err := fmt.Fprintf(w, "%s %s: %d passed, %d failed\n", status, source, passed, failed)
	return err
}
