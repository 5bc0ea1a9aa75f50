package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteReport renders the training curves to report.html.
func (w *Writer) WriteReport(updates []UpdateRecord, arenas []ArenaRecord) error {
	page := components.NewPage()
	page.AddCharts(
		updateChart("policy update", updates,
			series{"kl", func(r UpdateRecord) float64 { return r.KL }},
			series{"lr_multiplier", func(r UpdateRecord) float64 { return r.LRMultiplier }},
		),
		updateChart("loss", updates,
			series{"loss", func(r UpdateRecord) float64 { return r.Loss }},
			series{"entropy", func(r UpdateRecord) float64 { return r.Entropy }},
		),
		updateChart("explained variance", updates,
			series{"old", func(r UpdateRecord) float64 { return r.ExplainedVarOld }},
			series{"new", func(r UpdateRecord) float64 { return r.ExplainedVarNew }},
		),
		arenaChart(arenas),
	)

	f, err := os.Create(filepath.Join(w.baseDir, "report.html"))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	err = page.Render(f)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return f.Close()
}

type series struct {
	name  string
	value func(UpdateRecord) float64
}

func newLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	return line
}

func updateChart(title string, records []UpdateRecord, all ...series) *charts.Line {
	line := newLine(title)

	var batches []string
	for _, r := range records {
		batches = append(batches, strconv.Itoa(r.Batch))
	}
	line = line.SetXAxis(batches)
	for _, s := range all {
		items := make([]opts.LineData, 0, len(records))
		for _, r := range records {
			items = append(items, opts.LineData{Value: s.value(r)})
		}
		line.AddSeries(s.name, items)
	}
	return line
}

func arenaChart(records []ArenaRecord) *charts.Line {
	line := newLine("arena win ratio")

	var batches []string
	ratios := make([]opts.LineData, 0, len(records))
	playouts := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		batches = append(batches, strconv.Itoa(r.Batch))
		ratios = append(ratios, opts.LineData{Value: r.WinRatio})
		playouts = append(playouts, opts.LineData{Value: float64(r.PurePlayouts) / 1000})
	}
	line = line.SetXAxis(batches)
	line.AddSeries("win_ratio", ratios)
	line.AddSeries("pure_playouts_k", playouts)
	return line
}
