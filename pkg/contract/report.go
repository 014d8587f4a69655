package contract

import (
	"fmt"
	"strings"
)

// Status is the outcome of one assertion.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Result is a single assertion outcome. Err carries the typed failure
// (*NotFoundError, *MismatchError, *OrderingError) and is nil on pass.
type Result struct {
	ID      string `json:"id"`
	Scope   string `json:"scope"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Passed reports whether the assertion held.
func (r Result) Passed() bool {
	return r.Status == StatusPass
}

func pass(id, scope, format string, args ...any) Result {
	return Result{ID: id, Scope: scope, Status: StatusPass, Message: fmt.Sprintf(format, args...)}
}

func fail(id, scope string, err error) Result {
	return Result{ID: id, Scope: scope, Status: StatusFail, Message: err.Error(), Err: err}
}

// Report aggregates every result of a validation run.
type Report struct {
	Source  string   `json:"source"`
	Results []Result `json:"results"`
}

// Failures returns the failing results in evaluation order.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Passed reports whether no assertion failed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Counts returns the number of passing and failing results.
func (r Report) Counts() (passed, failed int) {
	for _, res := range r.Results {
		if res.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Find returns the results whose ID equals id.
func (r Report) Find(id string) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.ID == id {
			out = append(out, res)
		}
	}
	return out
}

// Err returns nil for a passing report and a *ReportError otherwise.
func (r Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	return &ReportError{Source: r.Source, Failures: failures}
}

// ReportError lists every failed assertion of a run.
type ReportError struct {
	Source   string
	Failures []Result
}

func (e *ReportError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "contract %s: ", e.Source)
	}
	fmt.Fprintf(&b, "%d assertion(s) failed", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  - [%s] %s: %s", f.ID, f.Scope, f.Message)
	}
	return b.String()
}
