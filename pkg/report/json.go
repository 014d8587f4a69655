package report

import (
	"encoding/json"
	"io"

	"github.com/goliatone/go-apicontract/pkg/contract"
)

type jsonReport struct {
	Source  string       `json:"source,omitempty"`
	Passed  bool         `json:"passed"`
	Summary jsonSummary  `json:"summary"`
	Results []jsonResult `json:"results"`
}

type jsonSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

type jsonResult struct {
	contract.Result
	Kind string `json:"kind,omitempty"`
}

// JSON writes the full report, results in evaluation order.
func JSON(w io.Writer, r contract.Report) error {
	passed, failed := r.Counts()
	out := jsonReport{
		Source:  r.Source,
		Passed:  failed == 0,
		Summary: jsonSummary{Passed: passed, Failed: failed},
		Results: make([]jsonResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, jsonResult{Result: res, Kind: Kind(res.Err)})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
