package services

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// gridText renders rows in the paste format for levels.
func gridText(rows []SamplingPlanRow, levels []float64) string {
	var lines []string
	for _, r := range rows {
		var cells []string
		for _, l := range levels {
			e, _ := r.Entry(l)
			cells = append(cells, fmt.Sprint(e.Ac), fmt.Sprint(e.Re))
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

func TestApplyPastedGrid_IdempotentOnCurrentValues(t *testing.T) {
	m, err := BuildSamplingPlanMatrix(threeLevelPlans())
	if err != nil {
		t.Fatalf("BuildSamplingPlanMatrix: %v", err)
	}

	res, err := ApplyPastedGrid(m.Rows, gridText(m.Rows, m.AQLLevels), m.AQLLevels)
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}
	if !reflect.DeepEqual(res.Rows, m.Rows) {
		t.Errorf("pasting the current values changed the matrix\ngot  %+v\nwant %+v", res.Rows, m.Rows)
	}
	if res.AppliedLines != len(m.Rows) {
		t.Errorf("AppliedLines = %d, want %d", res.AppliedLines, len(m.Rows))
	}
}

func TestApplyPastedGrid_Leniency(t *testing.T) {
	levels := []float64{0.65, 1.0, 1.5}
	rows := []SamplingPlanRow{plan("A", 2, AQLEntry{0.65, 9, 9}, AQLEntry{1.0, 7, 8}, AQLEntry{1.5, 9, 9})}

	res, err := ApplyPastedGrid(rows, "0\t1\t-\t\t2\t3", levels)
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}

	row := res.Rows[0]
	checks := []struct {
		level  float64
		ac, re int
	}{
		{0.65, 0, 1},
		{1.0, 7, 8},
		{1.5, 2, 3},
	}
	for _, c := range checks {
		e, _ := row.Entry(c.level)
		if e.Ac != c.ac || e.Re != c.re {
			t.Errorf("level %v = %d/%d, want %d/%d", c.level, e.Ac, e.Re, c.ac, c.re)
		}
	}
}

func TestApplyPastedGrid_CopyOnWrite(t *testing.T) {
	rows := []SamplingPlanRow{plan("A", 2, AQLEntry{1.0, 0, 1})}

	res, err := ApplyPastedGrid(rows, "4\t5", []float64{1.0})
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}
	if rows[0].AQLData[0].Ac != 0 {
		t.Error("input rows were modified")
	}
	if res.Rows[0].AQLData[0].Ac != 4 {
		t.Errorf("Ac = %d, want 4", res.Rows[0].AQLData[0].Ac)
	}
}

func TestApplyPastedGrid_IgnoredAndShortLines(t *testing.T) {
	levels := []float64{1.0, 2.5}
	rows := []SamplingPlanRow{
		plan("A", 2, AQLEntry{1.0, 0, 1}, AQLEntry{2.5, 0, 1}),
		plan("B", 3, AQLEntry{1.0, 0, 1}, AQLEntry{2.5, 0, 1}),
	}

	text := "\n\n1\t2\t3\t4\r\n5\t6\n7\t8\t9\t10\n\n"
	res, err := ApplyPastedGrid(rows, text, levels)
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}

	if res.AppliedLines != 2 {
		t.Errorf("AppliedLines = %d, want 2", res.AppliedLines)
	}
	if !reflect.DeepEqual(res.ShortLines, []int{2}) {
		t.Errorf("ShortLines = %v, want [2]", res.ShortLines)
	}
	if !reflect.DeepEqual(res.IgnoredLines, []int{3}) {
		t.Errorf("IgnoredLines = %v, want [3]", res.IgnoredLines)
	}

	b := res.Rows[1]
	if e, _ := b.Entry(1.0); e.Ac != 5 || e.Re != 6 {
		t.Errorf("B@1.0 = %d/%d, want 5/6", e.Ac, e.Re)
	}
	if e, _ := b.Entry(2.5); e.Ac != 0 || e.Re != 1 {
		t.Errorf("short line should keep B@2.5, got %d/%d", e.Ac, e.Re)
	}
}

func TestApplyPastedGrid_NonNumericCellBecomesZero(t *testing.T) {
	rows := []SamplingPlanRow{plan("A", 2, AQLEntry{1.0, 3, 4})}

	res, err := ApplyPastedGrid(rows, "x\t4", []float64{1.0})
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}
	if e := res.Rows[0].AQLData[0]; e.Ac != 0 || e.Re != 4 {
		t.Errorf("got %d/%d, want 0/4", e.Ac, e.Re)
	}
}

func TestApplyPastedGrid_NegativeCellBecomesZero(t *testing.T) {
	rows := []SamplingPlanRow{plan("A", 2, AQLEntry{1.0, 3, 4})}

	res, err := ApplyPastedGrid(rows, "-5\t-1.5", []float64{1.0})
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}
	if e := res.Rows[0].AQLData[0]; e.Ac != 0 || e.Re != 0 {
		t.Errorf("got %d/%d, want 0/0", e.Ac, e.Re)
	}
}

func TestApplyPastedGrid_TabOnlyLineKeepsAlignment(t *testing.T) {
	rows := []SamplingPlanRow{
		plan("A", 2, AQLEntry{1.0, 0, 1}),
		plan("B", 3, AQLEntry{1.0, 0, 1}),
	}

	res, err := ApplyPastedGrid(rows, "\t\n2\t3", []float64{1.0})
	if err != nil {
		t.Fatalf("ApplyPastedGrid: %v", err)
	}
	if e := res.Rows[0].AQLData[0]; e.Ac != 0 || e.Re != 1 {
		t.Errorf("A changed to %d/%d", e.Ac, e.Re)
	}
	if e := res.Rows[1].AQLData[0]; e.Ac != 2 || e.Re != 3 {
		t.Errorf("B = %d/%d, want 2/3", e.Ac, e.Re)
	}
}

func TestApplyPastedGrid_Errors(t *testing.T) {
	rows := []SamplingPlanRow{plan("A", 2, AQLEntry{1.0, 0, 1})}

	tests := []struct {
		name   string
		text   string
		levels []float64
	}{
		{"empty text", "  \n \n", []float64{1.0}},
		{"no levels", "1\t2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyPastedGrid(rows, tt.text, tt.levels)
			var ve *ValidationError
			if !asValidation(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
