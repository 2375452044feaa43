package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mfreed420/vite-plugin-svelte/internal/prebundle"
	"github.com/mfreed420/vite-plugin-svelte/internal/stage"
)

// stageLabels names the tracked stages in the rendered report.
var stageLabels = map[stage.Marker]string{
	stage.Read:         "read",
	stage.Preprocessed: "preprocess",
	stage.Compiled:     "compile",
	stage.End:          "total",
}

// emptyCell renders for a stage a group never executed.
const emptyCell = "-"

// Report renders the end-of-run performance report for run. A run with
// exactly one processed file yields the single-file hint instead of the
// grouped table; an empty run yields an empty string.
func (a *Aggregator) Report(ctx context.Context, run *prebundle.Run) string {
	records := run.Records()

	switch len(records) {
	case 0:
		return ""
	case 1:
		return a.singleFileHint(ctx, records[0])
	}

	groups := a.Aggregate(ctx, records)

	return renderTable(groups, run.Elapsed())
}

// renderTable produces one row per package group plus the run wall duration.
func renderTable(groups []GroupStat, elapsedMS float64) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	header := table.Row{"package", "files", "span"}
	for _, marker := range trackedStages {
		header = append(header, stageLabels[marker])
	}

	tbl.AppendHeader(header)

	totalFiles := 0

	for _, group := range groups {
		totalFiles += group.FileCount

		row := table.Row{
			group.Name,
			group.FileCount,
			FormatDuration(group.SpanEnd - group.SpanStart),
		}

		for _, marker := range trackedStages {
			row = append(row, stageCell(group, marker))
		}

		tbl.AppendRow(row)
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%s files in %s packages",
		humanize.Comma(int64(totalFiles)), humanize.Comma(int64(len(groups))))})

	var b strings.Builder

	b.WriteString("Prebundled packages, most files first:\n")
	b.WriteString(tbl.Render())
	b.WriteString("\nprebundling run took " + FormatDuration(elapsedMS))

	return b.String()
}

// stageCell renders "total (avg)" for one group and stage, or the empty cell
// when the group never recorded the stage.
func stageCell(group GroupStat, marker stage.Marker) string {
	total, ok := group.StageTotals[marker]
	if !ok {
		return emptyCell
	}

	avg := total / float64(group.FileCount)

	return fmt.Sprintf("%s (%s avg)", FormatDuration(total), FormatDuration(avg))
}

// singleFileHint replaces the grouped table when a run compiled exactly one
// file. Prebundling a lone sub-module of a package is itself the actionable
// signal, so the timing table is skipped in favor of advice.
func (a *Aggregator) singleFileHint(ctx context.Context, rec prebundle.Record) string {
	name := rec.Path

	pkgPath, err := a.Resolver.ResolvePackagePath(rec.Path)
	if err == nil && pkgPath != "" {
		name = a.Resolver.DisplayName(pkgPath)
	} else if err != nil && a.Logger != nil {
		a.Logger.DebugContext(ctx, "stats: package lookup failed", "file", rec.Path, "error", err)
	}

	return color.YellowString(
		"prebundling compiled a single file: %s. Consider excluding %s from optimization, or importing it directly from its package instead of a deep path.",
		rec.Path, name)
}
