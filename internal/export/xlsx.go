package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"estampa-fina/internal/model"
)

// WriteXLSX writes every report table as its own sheet.
func WriteXLSX(w io.Writer, r *model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, name := range TableNames {
		t, _ := ReportTable(r, name)
		idx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, name, t); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err := f.SetCellStyle(name, "A1", last, header); err != nil {
			return fmt.Errorf("styling sheet %s: %w", name, err)
		}
		if err := f.SetColWidth(name, "A", "A", 28); err != nil {
			return fmt.Errorf("sizing sheet %s: %w", name, err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, t Table) error {
	rows := append([][]string{t.Header}, t.Rows...)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
