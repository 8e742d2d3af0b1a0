package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"etf-return-stats/internal/report"
)

// WriteMomentsCSV writes the per-ticker moment summary.
func WriteMomentsCSV(path string, rep *report.Report) error {
	records := make([][]string, 0, len(rep.Moments))
	for _, m := range rep.Moments {
		records = append(records, []string{
			m.Ticker,
			strconv.Itoa(m.N),
			formatFloat(m.Mean),
			formatFloat(m.StdDev),
			formatFloat(m.Skewness),
			formatFloat(m.Kurtosis),
		})
	}
	header := []string{"ticker", "n", "mean", "std_dev", "skewness", "kurtosis"}
	return writeCSV(path, header, records)
}

// WriteCorrelationCSV writes the Kendall tau matrix and p-values as long
// (pairwise) records.
func WriteCorrelationCSV(path string, rep *report.Report) error {
	if rep.Correlation == nil {
		return fmt.Errorf("no correlation matrix to write")
	}
	cm := rep.Correlation

	records := make([][]string, 0, len(cm.Tickers)*len(cm.Tickers))
	for i, a := range cm.Tickers {
		for j, b := range cm.Tickers {
			if j <= i {
				continue
			}
			records = append(records, []string{
				a,
				b,
				formatFloat(cm.Tau.At(i, j)),
				formatFloat(cm.PValues.At(i, j)),
			})
		}
	}
	header := []string{"ticker_a", "ticker_b", "kendall_tau", "p_value"}
	return writeCSV(path, header, records)
}

// WriteNormalityCSV writes normality and goodness-of-fit test results.
func WriteNormalityCSV(path string, rep *report.Report) error {
	records := make([][]string, 0, len(rep.Normality)+1)
	for _, res := range rep.Normality {
		records = append(records, normalityRecord(res.Ticker, res.Method, res.N, res.Statistic, res.PValue))
	}
	if g := rep.GoodnessOfFit; g != nil {
		records = append(records, normalityRecord(g.Ticker, g.Method, g.N, g.Statistic, g.PValue))
	}
	header := []string{"ticker", "method", "n", "statistic", "p_value"}
	return writeCSV(path, header, records)
}

// WriteReturnsCSV writes the aligned wide return table, one column per
// ticker.
func WriteReturnsCSV(path string, rep *report.Report) error {
	if rep.Wide.Rows() == 0 {
		return fmt.Errorf("no aligned returns to write")
	}

	header := append([]string{"date"}, rep.Wide.Tickers...)
	records := make([][]string, 0, rep.Wide.Rows())
	for i, date := range rep.Wide.Dates {
		record := make([]string, 0, len(header))
		record = append(record, date.Format(time.DateOnly))
		for _, col := range rep.Wide.Columns {
			record = append(record, formatFloat(col[i]))
		}
		records = append(records, record)
	}
	return writeCSV(path, header, records)
}

func normalityRecord(ticker, method string, n int, statistic, pValue float64) []string {
	return []string{ticker, method, strconv.Itoa(n), formatFloat(statistic), formatFloat(pValue)}
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
