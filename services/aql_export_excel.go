package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	codeLetterSheetName = "Code Letters"
	planSheetName       = "Sampling Plans"
)

// GenerateAQLWorkbook writes both AQL matrices into one workbook and returns
// its bytes. The plan sheet round-trips through ImportPlanGrid.
func GenerateAQLWorkbook(letters CodeLetterMatrix, plans SamplingPlanMatrix) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, codeLetterSheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(planSheetName); err != nil {
		return nil, fmt.Errorf("create plan sheet: %w", err)
	}

	// ── Styles ──────────────────────────────────────────────────────────

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	if err := writeCodeLetterSheet(f, letters, headerStyle, cellStyle); err != nil {
		return nil, err
	}
	if err := writePlanSheet(f, plans, headerStyle, cellStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCodeLetterSheet(f *excelize.File, m CodeLetterMatrix, headerStyle, cellStyle int) error {
	sheet := codeLetterSheetName
	lastCol, _ := excelize.ColumnNumberToName(len(m.Columns) + 1)

	if err := f.SetCellValue(sheet, "A1", "Lot Size"); err != nil {
		return fmt.Errorf("write code letter header: %w", err)
	}
	for i, c := range m.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		if err := f.SetCellValue(sheet, cell, fmt.Sprintf("%s %s", c.InspectionType, c.Level)); err != nil {
			return fmt.Errorf("write code letter header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style code letter header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
		return fmt.Errorf("set col width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 12); err != nil {
		return fmt.Errorf("set col width: %w", err)
	}

	for ri, r := range m.Rows {
		rowNum := ri + 2
		nameCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		f.SetCellValue(sheet, nameCell, r.BatchName)
		for ci, letter := range r.Letters {
			cell, _ := excelize.CoordinatesToCellName(ci+2, rowNum)
			f.SetCellValue(sheet, cell, letter)
		}
		endCell, _ := excelize.CoordinatesToCellName(len(m.Columns)+1, rowNum)
		f.SetCellStyle(sheet, nameCell, endCell, cellStyle)
	}
	return nil
}

func writePlanSheet(f *excelize.File, m SamplingPlanMatrix, headerStyle, cellStyle int) error {
	sheet := planSheetName
	lastColNum := planGridLeadColumns + 2*len(m.AQLLevels)
	lastCol, _ := excelize.ColumnNumberToName(lastColNum)

	// Row 1: AQL levels merged over their Ac/Re pair. Row 2: Ac / Re labels.
	f.SetCellValue(sheet, "A1", "Sample Letter")
	f.SetCellValue(sheet, "B1", "Sample Size")
	f.MergeCell(sheet, "A1", "A2")
	f.MergeCell(sheet, "B1", "B2")
	for i, level := range m.AQLLevels {
		acCol := planGridLeadColumns + 2*i + 1
		acCell, _ := excelize.CoordinatesToCellName(acCol, 1)
		reCell, _ := excelize.CoordinatesToCellName(acCol+1, 1)
		if err := f.SetCellValue(sheet, acCell, FormatAQLLevel(level)); err != nil {
			return fmt.Errorf("write plan header: %w", err)
		}
		if err := f.MergeCell(sheet, acCell, reCell); err != nil {
			return fmt.Errorf("merge plan header: %w", err)
		}
		acLabel, _ := excelize.CoordinatesToCellName(acCol, 2)
		reLabel, _ := excelize.CoordinatesToCellName(acCol+1, 2)
		f.SetCellValue(sheet, acLabel, "Ac")
		f.SetCellValue(sheet, reLabel, "Re")
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"2", headerStyle); err != nil {
		return fmt.Errorf("style plan header: %w", err)
	}
	f.SetColWidth(sheet, "A", "B", 14)
	if lastColNum > planGridLeadColumns {
		f.SetColWidth(sheet, "C", lastCol, 6)
	}

	for ri, r := range m.Rows {
		rowNum := ri + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), r.SampleLetter)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), r.SampleSize)
		for i, level := range m.AQLLevels {
			e, ok := r.Entry(level)
			if !ok {
				continue
			}
			acCell, _ := excelize.CoordinatesToCellName(planGridLeadColumns+2*i+1, rowNum)
			reCell, _ := excelize.CoordinatesToCellName(planGridLeadColumns+2*i+2, rowNum)
			f.SetCellValue(sheet, acCell, e.Ac)
			f.SetCellValue(sheet, reCell, e.Re)
		}
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", lastCol, rowNum), cellStyle)
	}
	return nil
}

// thinBorders returns a slice of thin black borders for all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
