package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"etf-return-stats/internal/report"
	"etf-return-stats/internal/stats"
)

// WriteIndexChart renders each ticker's price history rebased to 100 at
// its first observation.
func WriteIndexChart(path string, prices []stats.Series, maxPoints int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	series := make([]chart.Series, 0, len(prices))
	for _, p := range prices {
		if p.Len() == 0 {
			continue
		}
		dates, values := downsample(p.Dates, p.Values, maxPoints)
		rebased := make([]float64, len(values))
		for i, v := range values {
			rebased[i] = v / p.Values[0] * 100
		}
		series = append(series, chart.TimeSeries{
			Name:    p.Ticker,
			XValues: dates,
			YValues: rebased,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no price series to chart")
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Index (first close = 100)",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(&graph, path)
}

// WriteRollingChart renders the trailing-window correlation series for
// the configured ticker pair, with the whole-history Kendall tau drawn as
// a dashed reference line. The reference mixes a rank correlation against
// Pearson windows on purpose; the legend labels each definition.
func WriteRollingChart(path string, pair [2]string, rolling []stats.RollingSeries, kendall float64, maxPoints int) error {
	if len(rolling) == 0 {
		return fmt.Errorf("no rolling series to chart")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	series := make([]chart.Series, 0, len(rolling)+1)
	var first, last time.Time
	for _, rs := range rolling {
		if len(rs.Dates) == 0 {
			continue
		}
		if first.IsZero() || rs.Dates[0].Before(first) {
			first = rs.Dates[0]
		}
		if end := rs.Dates[len(rs.Dates)-1]; end.After(last) {
			last = end
		}
		dates, values := downsample(rs.Dates, rs.Values, maxPoints)
		series = append(series, chart.TimeSeries{
			Name:    fmt.Sprintf("Pearson %dd", rs.Window),
			XValues: dates,
			YValues: values,
		})
	}

	series = append(series, chart.TimeSeries{
		Name:    fmt.Sprintf("Kendall tau (full history) = %.3f", kendall),
		XValues: []time.Time{first, last},
		YValues: []float64{kendall, kendall},
		Style: chart.Style{
			StrokeDashArray: []float64{5.0, 5.0},
		},
	})

	graph := chart.Chart{
		Title:  fmt.Sprintf("Rolling correlation %s / %s", pair[0], pair[1]),
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Correlation",
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(&graph, path)
}

// WriteHistogramChart renders a return histogram with the x-axis clipped
// to the configured display range.
func WriteHistogramChart(path string, ticker string, bins stats.HistogramBins, clipMin, clipMax float64) error {
	if len(bins.Centers) == 0 {
		return fmt.Errorf("no histogram bins to chart for %s", ticker)
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	var maxCount float64
	for _, c := range bins.Counts {
		maxCount = math.Max(maxCount, c)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s daily log returns", ticker),
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: clipMin, Max: clipMax},
			ValueFormatter: func(v interface{}) string { return chart.FloatValueFormatterWithFormat(v, "%.3f") },
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount * 1.05},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    ticker,
				XValues: bins.Centers,
				YValues: bins.Counts,
			},
		},
	}

	return renderPNG(&graph, path)
}

// ChartPaths lists the PNG artifacts for a report under dir.
func ChartPaths(dir string, rep *report.Report) (index, rolling string, histograms map[string]string) {
	index = filepath.Join(dir, "price_index.png")
	rolling = filepath.Join(dir, "rolling_correlation.png")
	histograms = make(map[string]string, len(rep.Returns))
	for _, r := range rep.Returns {
		histograms[r.Ticker] = filepath.Join(dir, fmt.Sprintf("hist_%s.png", r.Ticker))
	}
	return index, rolling, histograms
}

func renderPNG(graph *chart.Chart, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func downsample(dates []time.Time, values []float64, max int) ([]time.Time, []float64) {
	if max <= 0 || len(values) <= max {
		return dates, values
	}

	outDates := make([]time.Time, 0, max)
	outValues := make([]float64, 0, max)
	step := float64(len(values)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(values) {
			idx = len(values) - 1
		}
		outDates = append(outDates, dates[idx])
		outValues = append(outValues, values[idx])
	}
	return outDates, outValues
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
