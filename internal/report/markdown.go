package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

// WriteMarkdown writes a markdown report of runs to w
func WriteMarkdown(w io.Writer, runs []*models.Run, generated time.Time) error {
	md := markdown.NewMarkdown(w)
	summary := summarize(runs)

	md.H1("Checkout Probe Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", generated.Format("2006-01-02 15:04:05 MST")},
			{"Scenarios", strconv.Itoa(summary.Len())},
			{"Result", totals(summary)},
		},
	})
	md.PlainText("")

	if summary.AllPassed() {
		md.Tip("Every checkout scenario passed.")
	} else {
		md.Cautionf("%d scenario(s) failed.", len(summary.Failed()))
	}
	md.PlainText("")

	md.H2("Results")
	md.PlainText("")
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		if run == nil {
			continue
		}
		mark := "✅ " + StatusText(run)
		if !run.IsPassed() {
			mark = "❌ " + StatusText(run)
		}
		rows = append(rows, []string{
			run.Label(),
			mark,
			FormatDuration(run.Duration()),
			"`" + run.Reference + "`",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Scenario", "Result", "Duration", "Reference"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, run := range runs {
		if run == nil || run.IsPassed() {
			continue
		}
		writeFailure(md, run)
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by checkoutprobe*")

	return md.Build()
}

func writeFailure(md *markdown.Markdown, run *models.Run) {
	md.H3(run.Label())
	md.PlainText("")
	md.PlainText(FailureMessage(run.FailureKind))
	md.PlainText("")
	if run.Message != "" {
		md.Details("Error", run.Message)
		md.PlainText("")
	}

	var steps []string
	for i, st := range run.Steps {
		line := strconv.Itoa(i+1) + ". " + st.Name
		switch {
		case st.Skipped:
			line += " (skipped)"
		case !st.Passed:
			line += " **failed** after " + strconv.Itoa(st.Attempts) + " attempt(s)"
			if st.Screenshot != "" {
				line += ", screenshot `" + st.Screenshot + "`"
			}
		}
		steps = append(steps, line)
	}
	if len(steps) > 0 {
		md.BulletList(steps...)
		md.PlainText("")
	}
}
