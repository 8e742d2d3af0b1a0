package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"etf-return-stats/internal/report"
	"etf-return-stats/internal/stats"
)

const (
	sheetMoments     = "Moments"
	sheetCorrelation = "Correlation"
	sheetNormality   = "Normality"
)

// WriteWorkbook renders the report tables as an XLSX workbook.
func WriteWorkbook(path string, rep *report.Report, confidence float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetMoments); err != nil {
		return fmt.Errorf("rename moments sheet: %w", err)
	}
	if err := writeMomentsSheet(f, rep); err != nil {
		return err
	}

	if rep.Correlation != nil {
		if _, err := f.NewSheet(sheetCorrelation); err != nil {
			return fmt.Errorf("create correlation sheet: %w", err)
		}
		if err := writeCorrelationSheet(f, rep, confidence); err != nil {
			return err
		}
	}

	if len(rep.Normality) > 0 || rep.GoodnessOfFit != nil {
		if _, err := f.NewSheet(sheetNormality); err != nil {
			return fmt.Errorf("create normality sheet: %w", err)
		}
		if err := writeNormalitySheet(f, rep, confidence); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeMomentsSheet(f *excelize.File, rep *report.Report) error {
	header := []interface{}{"Ticker", "N", "Mean", "Std Dev (sample)", "Skewness", "Kurtosis (normal=3)"}
	if err := f.SetSheetRow(sheetMoments, "A1", &header); err != nil {
		return fmt.Errorf("write moments header: %w", err)
	}

	for i, m := range rep.Moments {
		row := []interface{}{m.Ticker, m.N, m.Mean, m.StdDev, m.Skewness, m.Kurtosis}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetMoments, cell, &row); err != nil {
			return fmt.Errorf("write moments row: %w", err)
		}
	}
	return nil
}

func writeCorrelationSheet(f *excelize.File, rep *report.Report, confidence float64) error {
	cm := rep.Correlation
	order := cm.Order

	// Kendall tau block in clustered display order.
	if err := f.SetCellValue(sheetCorrelation, "A1", "Kendall tau"); err != nil {
		return err
	}
	row := 2
	if err := writeMatrixBlock(f, cm.Tickers, order, row, func(i, j int) float64 { return cm.Tau.At(i, j) }); err != nil {
		return err
	}

	// Two-sided p-value block below, same ordering.
	row += len(order) + 3
	cell, err := excelize.CoordinatesToCellName(1, row-1)
	if err != nil {
		return err
	}
	label := fmt.Sprintf("Two-sided p-values (confidence %.2f)", confidence)
	if err := f.SetCellValue(sheetCorrelation, cell, label); err != nil {
		return err
	}
	return writeMatrixBlock(f, cm.Tickers, order, row, func(i, j int) float64 { return cm.PValues.At(i, j) })
}

func writeMatrixBlock(f *excelize.File, tickers []string, order []int, startRow int, at func(i, j int) float64) error {
	header := make([]interface{}, 0, len(order)+1)
	header = append(header, "")
	for _, idx := range order {
		header = append(header, tickers[idx])
	}
	cell, err := excelize.CoordinatesToCellName(1, startRow)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetCorrelation, cell, &header); err != nil {
		return fmt.Errorf("write matrix header: %w", err)
	}

	for r, i := range order {
		row := make([]interface{}, 0, len(order)+1)
		row = append(row, tickers[i])
		for _, j := range order {
			row = append(row, at(i, j))
		}
		cell, err := excelize.CoordinatesToCellName(1, startRow+1+r)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetCorrelation, cell, &row); err != nil {
			return fmt.Errorf("write matrix row: %w", err)
		}
	}
	return nil
}

func writeNormalitySheet(f *excelize.File, rep *report.Report, confidence float64) error {
	alpha := 1 - confidence
	header := []interface{}{"Ticker", "Method", "N", "Statistic", "P-Value", fmt.Sprintf("Reject at %.2f", alpha)}
	if err := f.SetSheetRow(sheetNormality, "A1", &header); err != nil {
		return fmt.Errorf("write normality header: %w", err)
	}

	results := make([]stats.NormalityResult, 0, len(rep.Normality)+1)
	results = append(results, rep.Normality...)
	if rep.GoodnessOfFit != nil {
		results = append(results, *rep.GoodnessOfFit)
	}

	for i, res := range results {
		row := []interface{}{res.Ticker, res.Method, res.N, res.Statistic, res.PValue, res.PValue < alpha}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetNormality, cell, &row); err != nil {
			return fmt.Errorf("write normality row: %w", err)
		}
	}
	return nil
}
