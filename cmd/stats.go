package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/anonymousomeone/mandelbrowser/engine/fractal"
	"github.com/anonymousomeone/mandelbrowser/engine/profiler"
	"github.com/olekukonko/tablewriter"
)

// formatTable renders rows under header as an ASCII table.
func formatTable(header []string, rows [][]string, footer []string) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	table.AppendBulk(rows)
	if footer != nil {
		table.SetFooter(footer)
	}
	table.Render()
	return buf.String()
}

func displayFrameStats(stats profiler.Stats) {
	logger.Noticef("frame statistics\n%s", formatTable(
		[]string{"Statistic", "Value"},
		stats.Rows(),
		[]string{"TOTAL", fmt.Sprintf("%d frames in %s", stats.Frames(), stats.Elapsed.Round(time.Millisecond))},
	))
}

func snapshotRows(params fractal.Params, res *fractal.Result) [][]string {
	pixels := params.Width * params.Height
	return [][]string{
		{"image", fmt.Sprintf("%dx%d", params.Width, params.Height)},
		{"center", fmt.Sprintf("(%g, %g)", params.Center[0], params.Center[1])},
		{"zoom", fmt.Sprintf("%g", params.Zoom)},
		{"iteration budget", fmt.Sprint(params.MaxIters)},
		{"pixels", fmt.Sprint(pixels)},
		{"interior pixels", fmt.Sprintf("%d (%02.1f %%)", res.Interior, 100*float64(res.Interior)/float64(pixels))},
		{"mean iterations", fmt.Sprintf("%.2f", res.MeanIterations())},
		{"workers", fmt.Sprint(res.Workers)},
	}
}

func displaySnapshotStats(params fractal.Params, res *fractal.Result) {
	logger.Noticef("snapshot statistics\n%s", formatTable(
		[]string{"Statistic", "Value"},
		snapshotRows(params, res),
		[]string{"RENDER TIME", res.Elapsed.Round(time.Microsecond).String()},
	))
}
