package services

import "math"

// InspectionType selects the inspection level family of Z1.4 Table I.
type InspectionType string

const (
	InspectionGeneral InspectionType = "General"
	InspectionSpecial InspectionType = "Special"
)

// InspectionLevel is the strictness tier inside an inspection type.
type InspectionLevel string

const (
	LevelI   InspectionLevel = "I"
	LevelII  InspectionLevel = "II"
	LevelIII InspectionLevel = "III"
	LevelS1  InspectionLevel = "S-1"
	LevelS2  InspectionLevel = "S-2"
	LevelS3  InspectionLevel = "S-3"
	LevelS4  InspectionLevel = "S-4"
)

// Status is the defect severity a buyer AQL level applies to.
type Status string

const (
	StatusMinor    Status = "Minor"
	StatusMajor    Status = "Major"
	StatusCritical Status = "Critical"
)

// Statuses lists the severities in the order the three buyer rows are written.
var Statuses = []Status{StatusMinor, StatusMajor, StatusCritical}

// InspectionTypes lists the supported inspection types.
var InspectionTypes = []InspectionType{InspectionGeneral, InspectionSpecial}

// LevelsByType maps each inspection type to the levels valid for it.
var LevelsByType = map[InspectionType][]InspectionLevel{
	InspectionGeneral: {LevelI, LevelII, LevelIII},
	InspectionSpecial: {LevelS1, LevelS2, LevelS3, LevelS4},
}

// DisabledSeverityAQL is the Minor AQL level that marks Major and Minor
// inspection as unused for a buyer.
const DisabledSeverityAQL = 0.01

// ValidLevel reports whether level belongs to inspectionType.
func ValidLevel(inspectionType InspectionType, level InspectionLevel) bool {
	for _, l := range LevelsByType[inspectionType] {
		if l == level {
			return true
		}
	}
	return false
}

// BatchRange is one lot-size band of a code letter row. The band covers
// [Min, next Min) and the last band is unbounded above.
type BatchRange struct {
	BatchName    string  `json:"BatchName"`
	Min          float64 `json:"Min"`
	SampleLetter string  `json:"SampleLetter"`
}

// SampleSizeLetterRow holds the batch ranges of one (InspectionType, Level).
type SampleSizeLetterRow struct {
	ID             string          `json:"_id,omitempty"`
	InspectionType InspectionType  `json:"InspectionType"`
	Level          InspectionLevel `json:"Level"`
	BatchRanges    []BatchRange    `json:"BatchRanges"`
}

// AQLEntry is the accept/reject pair for one AQL level.
type AQLEntry struct {
	AQLLevel float64 `json:"AQLLevel"`
	Ac       int     `json:"Ac"`
	Re       int     `json:"Re"`
}

// SamplingPlanRow maps a sample letter to its sample size and Ac/Re per AQL level.
type SamplingPlanRow struct {
	ID           string     `json:"_id,omitempty"`
	SampleLetter string     `json:"SampleLetter"`
	SampleSize   int        `json:"SampleSize"`
	AQLData      []AQLEntry `json:"AQLData"`
}

// Entry returns the AQL entry for level.
func (r SamplingPlanRow) Entry(level float64) (AQLEntry, bool) {
	for _, e := range r.AQLData {
		if SameAQLLevel(e.AQLLevel, level) {
			return e, true
		}
	}
	return AQLEntry{}, false
}

// Clone returns a copy that shares no slices with r.
func (r SamplingPlanRow) Clone() SamplingPlanRow {
	c := r
	c.AQLData = append([]AQLEntry(nil), r.AQLData...)
	return c
}

// BuyerSampleEntry is one resolved line of a buyer's sampling chart.
type BuyerSampleEntry struct {
	BatchName    string  `json:"BatchName"`
	Min          float64 `json:"Min"`
	SampleLetter string  `json:"SampleLetter"`
	SampleSize   int     `json:"SampleSize"`
	Ac           int     `json:"Ac"`
	Re           int     `json:"Re"`
}

// BuyerAQLConfig is one severity row of a buyer's AQL configuration. Three rows,
// one per Status, form a buyer's configuration.
type BuyerAQLConfig struct {
	ID             string             `json:"_id,omitempty"`
	Buyer          string             `json:"Buyer"`
	InspectionType InspectionType     `json:"InspectionType"`
	Level          InspectionLevel    `json:"Level"`
	Status         Status             `json:"Status"`
	AQLLevel       float64            `json:"AQLLevel"`
	SampleData     []BuyerSampleEntry `json:"SampleData"`
}

// CalculationRequest is the input of Calculate.
type CalculationRequest struct {
	InspectionType InspectionType  `json:"InspectionType"`
	Level          InspectionLevel `json:"Level"`
	InspectedQty   float64         `json:"InspectedQty"`
	AQLLevel       float64         `json:"AQLLevel"`
}

// CalculationResult is the resolved sampling plan for a lot.
type CalculationResult struct {
	SampleLetter   string          `json:"SampleLetter"`
	SampleSize     int             `json:"SampleSize"`
	AQLLevel       float64         `json:"AQLLevel"`
	Ac             int             `json:"Ac"`
	Re             int             `json:"Re"`
	InspectionType InspectionType  `json:"InspectionType"`
	Level          InspectionLevel `json:"Level"`
	InspectedQty   float64         `json:"InspectedQty"`
}

// AQLTables is a snapshot of both reference tables.
type AQLTables struct {
	SampleLetters []SampleSizeLetterRow
	Plans         []SamplingPlanRow
}

// SameAQLLevel compares AQL levels that went through float parsing.
func SameAQLLevel(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
