package report

import (
	"embed"
	"fmt"
	"io"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-apicontract/pkg/contract"
)

//go:embed templates/*.tpl
var templateFS embed.FS

const htmlTemplate = "templates/report.html.tpl"

var (
	templateOnce sync.Once
	templateErr  error
	reportTpl    *pongo2.Template
)

func htmlReportTemplate() (*pongo2.Template, error) {
	templateOnce.Do(func() {
		set := pongo2.NewSet("apicontract-report", pongo2.NewFSLoader(templateFS))
		reportTpl, templateErr = set.FromFile(htmlTemplate)
	})
	return reportTpl, templateErr
}

// HTML renders a standalone page listing failures first, then every result.
// Values are autoescaped.
func HTML(w io.Writer, r contract.Report, opts Options) error {
	tpl, err := htmlReportTemplate()
	if err != nil {
		return fmt.Errorf("report: load html template: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "Contract validation"
		if r.Source != "" {
			title += ": " + r.Source
		}
	}

	passed, failed := r.Counts()
	ctx := pongo2.Context{
		"title":    title,
		"source":   r.Source,
		"passed":   passed,
		"failed":   failed,
		"failures": htmlRows(sortedFailures(r)),
		"results":  htmlRows(r.Results),
	}
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("report: execute html template: %w", err)
	}
	return nil
}

func htmlRows(results []contract.Result) []map[string]any {
	rows := make([]map[string]any, 0, len(results))
	for _, res := range results {
		rows = append(rows, map[string]any{
			"id":      res.ID,
			"scope":   res.Scope,
			"status":  string(res.Status),
			"message": res.Message,
			"kind":    Kind(res.Err),
		})
	}
	return rows
}
