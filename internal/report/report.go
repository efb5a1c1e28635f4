// Package report renders per-frame association results as a standalone
// HTML chart for quick visual review of a merge run.
package report

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kinemetric/trackmerge/internal/merge"
)

// WriteMatchChart writes an HTML line chart of matched vs unmatched
// instances per frame.
func WriteMatchChart(path, title string, tallies []merge.FrameTally) error {
	x := make([]string, 0, len(tallies))
	matched := make([]opts.LineData, 0, len(tallies))
	unmatched := make([]opts.LineData, 0, len(tallies))
	for _, t := range tallies {
		x = append(x, strconv.Itoa(t.FrameID))
		matched = append(matched, opts.LineData{Value: t.Matched})
		unmatched = append(unmatched, opts.LineData{Value: t.Unmatched})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frames=%d", len(tallies))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(x).
		AddSeries("matched", matched).
		AddSeries("unmatched", unmatched)

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render match chart: %w", err)
	}
	return nil
}
