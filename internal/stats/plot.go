package stats

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mfreed420/vite-plugin-svelte/internal/stage"
)

// plotHeight is the rendered chart height.
const plotHeight = "500px"

// WritePlot renders the per-package stage totals as an HTML bar chart page.
func WritePlot(groups []GroupStat, outPath string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Prebundle stage durations by package", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "7%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)

	labels := make([]string, len(groups))
	for i, group := range groups {
		labels[i] = group.Name
	}

	bar.SetXAxis(labels)

	for _, marker := range trackedStages {
		if marker == stage.End {
			continue
		}

		data := make([]opts.BarData, len(groups))
		for i, group := range groups {
			data[i] = opts.BarData{Value: group.StageTotals[marker]}
		}

		bar.AddSeries(stageLabels[marker], data)
	}

	out, createErr := os.Create(outPath)
	if createErr != nil {
		return fmt.Errorf("create plot file: %w", createErr)
	}

	defer func() { _ = out.Close() }()

	renderErr := bar.Render(out)
	if renderErr != nil {
		return fmt.Errorf("render plot: %w", renderErr)
	}

	return nil
}
