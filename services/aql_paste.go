package services

import (
	"strings"

	"github.com/spf13/cast"
)

// PasteResult is the outcome of applying a pasted grid. Line numbers are
// 1-based positions in the pasted text after leading blank lines are dropped.
type PasteResult struct {
	Rows         []SamplingPlanRow `json:"Rows"`
	AppliedLines int               `json:"AppliedLines"`
	IgnoredLines []int             `json:"IgnoredLines,omitempty"`
	ShortLines   []int             `json:"ShortLines,omitempty"`
}

// ApplyPastedGrid merges tab separated Ac/Re values into a copy of rows.
//
// Line i updates rows[i]. Each line holds 2*len(levels) cells ordered
// Ac_0, Re_0, Ac_1, Re_1, ... following levels. An empty or "-" cell keeps
// the current value, any other non-numeric cell becomes 0. Lines past the end
// of rows are ignored and short lines update only the cells they carry, so a
// malformed paste can leave a row half updated.
func ApplyPastedGrid(rows []SamplingPlanRow, pastedText string, levels []float64) (PasteResult, error) {
	lines := splitPastedLines(pastedText)
	if len(lines) == 0 {
		return PasteResult{}, &ValidationError{Field: "text", Message: "pasted data is empty"}
	}
	if len(levels) == 0 {
		return PasteResult{}, &ValidationError{Field: "levels", Message: "no AQL levels to paste into"}
	}

	result := PasteResult{Rows: cloneRows(rows)}
	expected := 2 * len(levels)

	for i, line := range lines {
		lineNo := i + 1
		if i >= len(result.Rows) {
			result.IgnoredLines = append(result.IgnoredLines, lineNo)
			continue
		}

		cells := strings.Split(line, "\t")
		if len(cells) < expected {
			result.ShortLines = append(result.ShortLines, lineNo)
		}

		row := &result.Rows[i]
		for li, level := range levels {
			idx := entryIndex(row, level)
			if ac, ok := pastedCell(cells, 2*li); ok {
				row.AQLData[idx].Ac = ac
			}
			if re, ok := pastedCell(cells, 2*li+1); ok {
				row.AQLData[idx].Re = re
			}
		}
		result.AppliedLines++
	}

	return result, nil
}

// splitPastedLines splits on newlines, strips carriage returns and drops blank
// lines at either end. A line holding only tabs is not blank, so rows of
// empty cells stay aligned.
func splitPastedLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range raw {
		raw[i] = strings.TrimSuffix(raw[i], "\r")
	}

	start, end := 0, len(raw)
	for start < end && strings.Trim(raw[start], " ") == "" {
		start++
	}
	for end > start && strings.Trim(raw[end-1], " ") == "" {
		end--
	}
	return raw[start:end]
}

// pastedCell reads cell idx. ok is false when the cell is absent, empty or "-".
// Unreadable and negative numbers read as 0.
func pastedCell(cells []string, idx int) (int, bool) {
	if idx >= len(cells) {
		return 0, false
	}
	v := strings.TrimSpace(cells[idx])
	if v == "" || v == MissingLetter {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 {
		return 0, true
	}
	return int(f), true
}

// entryIndex returns the index of level in row.AQLData, appending a zero entry
// when the row lacks it.
func entryIndex(row *SamplingPlanRow, level float64) int {
	for i, e := range row.AQLData {
		if SameAQLLevel(e.AQLLevel, level) {
			return i
		}
	}
	row.AQLData = append(row.AQLData, AQLEntry{AQLLevel: level})
	return len(row.AQLData) - 1
}
