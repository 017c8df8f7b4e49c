package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

var (
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// NewTable returns a borderless table that keeps long cells on one line
func NewTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
		})),
		tablewriter.WithHeaderAutoWrap(tw.WrapNone),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func colorStatus(run *models.Run) string {
	text := StatusText(run)
	if run.IsPassed() {
		return green(text)
	}
	return red(text)
}

// PrintSummary writes a table of runs and the overall verdict to w
func PrintSummary(w io.Writer, runs []*models.Run) {
	table := NewTable(w)
	table.Header("Scenario", "Result", "Steps", "Duration", "Failure")

	for _, run := range runs {
		if run == nil {
			continue
		}
		failure := ""
		if run.FailureKind != models.FailureNone {
			failure = string(run.FailureKind)
			if st := failedStep(run); st != nil {
				failure += " @ " + st.Name
			}
		}
		_ = table.Append([]string{
			run.Label(),
			colorStatus(run),
			strconv.Itoa(len(run.Steps)),
			FormatDuration(run.Duration()),
			failure,
		})
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(w, "failed to render table: %v\n", err)
	}

	summary := summarize(runs)
	fmt.Fprintln(w)
	if summary.AllPassed() {
		fmt.Fprintf(w, "%s %s\n", green("ALL PASSED"), gray(totals(summary)))
		return
	}
	fmt.Fprintf(w, "%s %s\n", red("FAILED"), gray(totals(summary)))
	for _, run := range runs {
		if run == nil || run.IsPassed() {
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", run.Label(), FailureMessage(run.FailureKind))
		if run.Message != "" {
			fmt.Fprintf(w, "    %s\n", gray(run.Message))
		}
	}
}

// PrintHistory writes stored runs, newest first, as a table
func PrintHistory(w io.Writer, runs []*models.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, gray("no runs recorded"))
		return
	}

	table := NewTable(w)
	table.Header("Reference", "Scenario", "Result", "Started", "Duration")

	for _, run := range runs {
		started := "-"
		if !run.StartedAt.IsZero() {
			started = run.StartedAt.Local().Format("2006-01-02 15:04:05")
		}
		_ = table.Append([]string{
			run.Reference,
			run.Label(),
			colorStatus(run),
			started,
			FormatDuration(run.Duration()),
		})
	}
	if err := table.Render(); err != nil {
		fmt.Fprintf(w, "failed to render table: %v\n", err)
	}
}
