package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// planGridLeadColumns are the letter and sample size columns that precede
// the Ac/Re pairs in an exported or hand-made plan sheet.
const planGridLeadColumns = 2

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows. The
// "Sampling Plans" sheet is preferred, falling back to the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if idx, err := f.GetSheetIndex(planSheetName); err == nil && idx >= 0 {
		sheetName = planSheetName
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := rows[0]
	dataRows := rows[1:]
	// The exported workbook carries a second header row naming Ac/Re.
	if len(dataRows) > 0 && isAcReHeader(dataRows[0]) {
		dataRows = dataRows[1:]
	}
	return headers, dataRows, nil
}

func isAcReHeader(row []string) bool {
	for _, c := range row {
		v := strings.ToLower(strings.TrimSpace(c))
		if v == "ac" || v == "re" {
			return true
		}
	}
	return false
}

// PlanGridText converts an uploaded .csv or .xlsx plan sheet into the tab
// separated paste format, dropping the letter and sample size columns.
func PlanGridText(file io.Reader, fileName string) (string, error) {
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		_, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		_, dataRows, err = parseExcel(file)
	default:
		return "", &ValidationError{Field: "file", Message: "unsupported file format: must be .csv or .xlsx"}
	}
	if err != nil {
		return "", &ValidationError{Field: "file", Message: err.Error()}
	}

	lines := make([]string, 0, len(dataRows))
	for _, r := range dataRows {
		// Blank edge lines are trimmed by the paste parser; "-" keeps the row.
		line := MissingLetter
		if len(r) > planGridLeadColumns {
			if joined := strings.Join(r[planGridLeadColumns:], "\t"); strings.TrimSpace(joined) != "" {
				line = joined
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// ImportPlanGrid parses an uploaded plan sheet and applies it to rows exactly
// like a clipboard paste.
func ImportPlanGrid(file io.Reader, fileName string, m SamplingPlanMatrix) (PasteResult, error) {
	text, err := PlanGridText(file, fileName)
	if err != nil {
		return PasteResult{}, err
	}
	return ApplyPastedGrid(m.Rows, text, m.AQLLevels)
}
