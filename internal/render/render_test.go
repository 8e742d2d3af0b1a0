package render

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-return-stats/internal/config"
	"etf-return-stats/internal/report"
	"etf-return-stats/internal/stats"
)

func randomWalk(ticker string, seed uint64, n int) stats.Series {
	dist := distuv.Normal{Mu: 0, Sigma: 0.01, Src: rand.NewPCG(seed, 0)}

	s := stats.Series{Ticker: ticker}
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		s.Dates = append(s.Dates, date)
		s.Values = append(s.Values, price)
		price *= math.Exp(dist.Rand())
		date = date.AddDate(0, 0, 1)
	}
	return s
}

func testReport(t *testing.T) *report.Report {
	t.Helper()

	cfg := config.ReportConfig{
		Tickers:           []string{"AAA", "BBB"},
		Start:             time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:               time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		RollingWindows:    []int{25},
		RollingPair:       []string{"AAA", "BBB"},
		CorrelationMethod: "kendall",
		ConfidenceLevel:   0.95,
		KSTicker:          "AAA",
		HistogramBins:     50,
		HistogramClip:     config.HistogramClip{Min: -0.05, Max: 0.05},
		MaxChartPoints:    5000,
		OutputDir:         t.TempDir(),
	}

	prices := []stats.Series{randomWalk("AAA", 1, 120), randomWalk("BBB", 2, 120)}
	rep, err := report.Generate(cfg, prices, zerolog.New(io.Discard))
	require.NoError(t, err)
	return rep
}

func TestWriteCharts(t *testing.T) {
	rep := testReport(t)
	dir := t.TempDir()

	indexPath := filepath.Join(dir, "price_index.png")
	require.NoError(t, WriteIndexChart(indexPath, rep.Prices, 5000))
	assertNonEmptyFile(t, indexPath)

	rollingPath := filepath.Join(dir, "rolling.png")
	require.NoError(t, WriteRollingChart(rollingPath, rep.RollingPair, rep.Rolling, rep.PairKendall, 5000))
	assertNonEmptyFile(t, rollingPath)

	h, err := stats.Histogram(rep.Returns[0], 50)
	require.NoError(t, err)
	histPath := filepath.Join(dir, "hist.png")
	require.NoError(t, WriteHistogramChart(histPath, "AAA", h, -0.05, 0.05))
	assertNonEmptyFile(t, histPath)
}

func TestWriteWorkbook(t *testing.T) {
	rep := testReport(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, WriteWorkbook(path, rep, 0.95))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, sheetMoments)
	assert.Contains(t, sheets, sheetCorrelation)
	assert.Contains(t, sheets, sheetNormality)

	got, err := f.GetCellValue(sheetMoments, "A2")
	require.NoError(t, err)
	assert.Equal(t, "AAA", got)
}

func TestWriteCSVTables(t *testing.T) {
	rep := testReport(t)
	dir := t.TempDir()

	momentsPath := filepath.Join(dir, "moments.csv")
	require.NoError(t, WriteMomentsCSV(momentsPath, rep))
	rows := readCSV(t, momentsPath)
	require.Len(t, rows, 3) // header + two tickers
	assert.Equal(t, "ticker", rows[0][0])
	assert.Equal(t, "AAA", rows[1][0])

	corrPath := filepath.Join(dir, "correlation.csv")
	require.NoError(t, WriteCorrelationCSV(corrPath, rep))
	rows = readCSV(t, corrPath)
	require.Len(t, rows, 2) // header + one pair
	assert.Equal(t, []string{"AAA", "BBB"}, rows[1][:2])

	normPath := filepath.Join(dir, "normality.csv")
	require.NoError(t, WriteNormalityCSV(normPath, rep))
	rows = readCSV(t, normPath)
	require.Len(t, rows, 4) // header + two JB + one KS

	returnsPath := filepath.Join(dir, "returns.csv")
	require.NoError(t, WriteReturnsCSV(returnsPath, rep))
	rows = readCSV(t, returnsPath)
	require.Len(t, rows, rep.Wide.Rows()+1)
	assert.Equal(t, []string{"date", "AAA", "BBB"}, rows[0])
}

func TestDownsampleKeepsEndpoints(t *testing.T) {
	n := 100
	dates := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		values[i] = float64(i)
	}

	outDates, outValues := downsample(dates, values, 10)
	require.Len(t, outValues, 10)
	assert.Equal(t, 0.0, outValues[0])
	assert.Equal(t, 99.0, outValues[9])
	assert.True(t, outDates[9].Equal(dates[n-1]))
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}
