package services

import (
	"sort"
)

// MissingLetter marks a code letter cell with no matching batch range.
const MissingLetter = "-"

// CodeLetterColumn identifies one (InspectionType, Level) column.
type CodeLetterColumn struct {
	InspectionType InspectionType  `json:"InspectionType"`
	Level          InspectionLevel `json:"Level"`
}

// CodeLetterColumns is the fixed column order of the code letter matrix.
var CodeLetterColumns = []CodeLetterColumn{
	{InspectionGeneral, LevelI},
	{InspectionGeneral, LevelII},
	{InspectionGeneral, LevelIII},
	{InspectionSpecial, LevelS1},
	{InspectionSpecial, LevelS2},
	{InspectionSpecial, LevelS3},
	{InspectionSpecial, LevelS4},
}

// CodeLetterMatrixRow is one batch range with a letter per column.
type CodeLetterMatrixRow struct {
	BatchName string   `json:"BatchName"`
	Min       float64  `json:"Min"`
	Letters   []string `json:"Letters"`
}

// CodeLetterMatrix is the batch range x inspection level view of the code
// letter table.
type CodeLetterMatrix struct {
	Columns []CodeLetterColumn    `json:"Columns"`
	Rows    []CodeLetterMatrixRow `json:"Rows"`
}

// BuildCodeLetterMatrix pivots the per-level code letter rows into one row per
// batch range. Batch ranges are deduplicated by name, the first occurrence
// fixing Min, and sorted by Min. Missing combinations render as "-".
func BuildCodeLetterMatrix(rows []SampleSizeLetterRow) CodeLetterMatrix {
	colIndex := make(map[CodeLetterColumn]int, len(CodeLetterColumns))
	for i, c := range CodeLetterColumns {
		colIndex[c] = i
	}

	var out []CodeLetterMatrixRow
	byName := make(map[string]int)

	for _, r := range rows {
		for _, br := range r.BatchRanges {
			if _, ok := byName[br.BatchName]; ok {
				continue
			}
			letters := make([]string, len(CodeLetterColumns))
			for i := range letters {
				letters[i] = MissingLetter
			}
			byName[br.BatchName] = len(out)
			out = append(out, CodeLetterMatrixRow{BatchName: br.BatchName, Min: br.Min, Letters: letters})
		}
	}

	for _, r := range rows {
		ci, ok := colIndex[CodeLetterColumn{r.InspectionType, r.Level}]
		if !ok {
			continue
		}
		for _, br := range r.BatchRanges {
			if br.SampleLetter == "" {
				continue
			}
			out[byName[br.BatchName]].Letters[ci] = br.SampleLetter
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Min < out[j].Min
	})

	return CodeLetterMatrix{
		Columns: append([]CodeLetterColumn(nil), CodeLetterColumns...),
		Rows:    out,
	}
}

// SamplingPlanMatrix is the sample letter x AQL level view of the sampling
// plan table. Rows carry their AQL data in AQLLevels order.
type SamplingPlanMatrix struct {
	AQLLevels []float64         `json:"AQLLevels"`
	Rows      []SamplingPlanRow `json:"Rows"`
}

// BuildSamplingPlanMatrix sorts rows by sample size and validates that every
// row carries the same AQL level set. The input slice is left untouched.
func BuildSamplingPlanMatrix(rows []SamplingPlanRow) (SamplingPlanMatrix, error) {
	out := make([]SamplingPlanRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
		sort.SliceStable(out[i].AQLData, func(a, b int) bool {
			return out[i].AQLData[a].AQLLevel < out[i].AQLData[b].AQLLevel
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SampleSize != out[j].SampleSize {
			return out[i].SampleSize < out[j].SampleSize
		}
		return out[i].SampleLetter < out[j].SampleLetter
	})

	if len(out) == 0 {
		return SamplingPlanMatrix{}, nil
	}

	levels := levelsOf(out[0])
	for _, r := range out[1:] {
		got := levelsOf(r)
		if !sameLevelSet(levels, got) {
			return SamplingPlanMatrix{}, &SchemaMismatchError{
				SampleLetter: r.SampleLetter,
				Expected:     levels,
				Got:          got,
			}
		}
	}

	return SamplingPlanMatrix{AQLLevels: levels, Rows: out}, nil
}

// Row returns the matrix row for a sample letter.
func (m SamplingPlanMatrix) Row(letter string) (SamplingPlanRow, bool) {
	for _, r := range m.Rows {
		if r.SampleLetter == letter {
			return r, true
		}
	}
	return SamplingPlanRow{}, false
}

func levelsOf(r SamplingPlanRow) []float64 {
	levels := make([]float64, len(r.AQLData))
	for i, e := range r.AQLData {
		levels[i] = e.AQLLevel
	}
	sort.Float64s(levels)
	return levels
}

func sameLevelSet(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameAQLLevel(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cloneRows(rows []SamplingPlanRow) []SamplingPlanRow {
	out := make([]SamplingPlanRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
