package services

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BuyerConfigInput is the form behind a buyer's three AQL rows.
type BuyerConfigInput struct {
	Buyer          string          `json:"Buyer"`
	InspectionType InspectionType  `json:"InspectionType"`
	Level          InspectionLevel `json:"Level"`
	Minor          float64         `json:"Minor"`
	Major          float64         `json:"Major"`
	Critical       float64         `json:"Critical"`
}

// Validate checks the input before any rows are built.
func (in BuyerConfigInput) Validate() error {
	positive := validation.Min(0.0).Exclusive().Error("must be a positive number")
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Buyer, validation.Required),
		validation.Field(&in.InspectionType, validation.Required, validation.In(InspectionGeneral, InspectionSpecial)),
		validation.Field(&in.Level, validation.Required),
		validation.Field(&in.Minor, validation.Required, positive),
		validation.Field(&in.Major, validation.Required, positive),
		validation.Field(&in.Critical, validation.Required, positive),
	)
	if err != nil {
		return toValidationError(err)
	}
	if !ValidLevel(in.InspectionType, in.Level) {
		return &ValidationError{
			Field:   "Level",
			Message: fmt.Sprintf("level %q is not a %s inspection level", in.Level, in.InspectionType),
		}
	}
	return nil
}

func (in BuyerConfigInput) levelFor(s Status) float64 {
	switch s {
	case StatusMinor:
		return in.Minor
	case StatusMajor:
		return in.Major
	default:
		return in.Critical
	}
}

// BuildBuyerConfigRows expands the input into the Minor, Major and Critical
// rows, each carrying its resolved sampling chart.
func BuildBuyerConfigRows(in BuyerConfigInput, tables AQLTables) ([]BuyerAQLConfig, error) {
	in.Buyer = strings.TrimSpace(in.Buyer)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rows := make([]BuyerAQLConfig, 0, len(Statuses))
	for _, s := range Statuses {
		level := in.levelFor(s)
		rows = append(rows, BuyerAQLConfig{
			Buyer:          in.Buyer,
			InspectionType: in.InspectionType,
			Level:          in.Level,
			Status:         s,
			AQLLevel:       level,
			SampleData:     BuildSampleData(tables, in.InspectionType, in.Level, level),
		})
	}
	return rows, nil
}

// BuildSampleData resolves every batch range of (inspectionType, level) at
// aqlLevel. Ranges whose letter or AQL level is unmapped are left out.
func BuildSampleData(tables AQLTables, inspectionType InspectionType, level InspectionLevel, aqlLevel float64) []BuyerSampleEntry {
	var ranges []BatchRange
	for _, r := range tables.SampleLetters {
		if r.InspectionType == inspectionType && r.Level == level {
			ranges = r.BatchRanges
			break
		}
	}

	out := make([]BuyerSampleEntry, 0, len(ranges))
	for _, br := range ranges {
		plan, err := lookupPlan(tables.Plans, br.SampleLetter)
		if err != nil {
			continue
		}
		entry, ok := plan.Entry(aqlLevel)
		if !ok {
			continue
		}
		out = append(out, BuyerSampleEntry{
			BatchName:    br.BatchName,
			Min:          br.Min,
			SampleLetter: br.SampleLetter,
			SampleSize:   plan.SampleSize,
			Ac:           entry.Ac,
			Re:           entry.Re,
		})
	}
	return out
}

// ValidateBuyerConfigRows checks an upsert payload: exactly one row per
// status, all for the same non-empty buyer and inspection level.
func ValidateBuyerConfigRows(rows []BuyerAQLConfig) error {
	if len(rows) != len(Statuses) {
		return &ValidationError{Message: fmt.Sprintf("expected %d rows, got %d", len(Statuses), len(rows))}
	}

	seen := make(map[Status]bool, len(rows))
	buyer := strings.TrimSpace(rows[0].Buyer)
	if buyer == "" {
		return &ValidationError{Field: "Buyer", Message: "cannot be blank"}
	}

	for _, r := range rows {
		if strings.TrimSpace(r.Buyer) != buyer {
			return &ValidationError{Field: "Buyer", Message: "all rows must belong to the same buyer"}
		}
		if r.InspectionType != rows[0].InspectionType || r.Level != rows[0].Level {
			return &ValidationError{Field: "Level", Message: "all rows must share one inspection type and level"}
		}
		if !ValidLevel(r.InspectionType, r.Level) {
			return &ValidationError{
				Field:   "Level",
				Message: fmt.Sprintf("level %q is not a %s inspection level", r.Level, r.InspectionType),
			}
		}
		switch r.Status {
		case StatusMinor, StatusMajor, StatusCritical:
		default:
			return &ValidationError{Field: "Status", Message: fmt.Sprintf("unknown status %q", r.Status)}
		}
		if seen[r.Status] {
			return &ValidationError{Field: "Status", Message: fmt.Sprintf("duplicate status %q", r.Status)}
		}
		seen[r.Status] = true
		if r.AQLLevel <= 0 {
			return &ValidationError{Field: "AQLLevel", Message: "must be a positive number"}
		}
	}
	return nil
}

// ResolveBuyerConfigRows validates an upsert payload and recomputes each
// row's SampleData from tables, discarding whatever the caller sent.
func ResolveBuyerConfigRows(rows []BuyerAQLConfig, tables AQLTables) ([]BuyerAQLConfig, error) {
	if err := ValidateBuyerConfigRows(rows); err != nil {
		return nil, err
	}
	out := make([]BuyerAQLConfig, len(rows))
	for i, r := range rows {
		r.Buyer = strings.TrimSpace(r.Buyer)
		r.SampleData = BuildSampleData(tables, r.InspectionType, r.Level, r.AQLLevel)
		out[i] = r
	}
	return out, nil
}

// UpsertBuyerConfig builds the three rows for in and replaces the buyer's
// configuration with them in a single repository call.
func UpsertBuyerConfig(ctx context.Context, repo AQLRepository, tables AQLTables, in BuyerConfigInput) ([]BuyerAQLConfig, error) {
	rows, err := BuildBuyerConfigRows(in, tables)
	if err != nil {
		return nil, err
	}
	saved, err := repo.UpsertBuyerConfig(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("upsert buyer config %q: %w", in.Buyer, err)
	}
	return saved, nil
}

// StatusAvailability reports which severities can be selected for a buyer.
type StatusAvailability struct {
	Buyer    string `json:"Buyer"`
	Minor    bool   `json:"Minor"`
	Major    bool   `json:"Major"`
	Critical bool   `json:"Critical"`
}

// Available reports whether s is selectable.
func (a StatusAvailability) Available(s Status) bool {
	switch s {
	case StatusMinor:
		return a.Minor
	case StatusMajor:
		return a.Major
	case StatusCritical:
		return a.Critical
	}
	return false
}

// AvailableStatuses applies the disablement rule: a Minor row at AQL 0.01
// turns off Major and Minor for the buyer. Critical is always selectable.
func AvailableStatuses(configs []BuyerAQLConfig, buyer string) StatusAvailability {
	a := StatusAvailability{Buyer: buyer, Minor: true, Major: true, Critical: true}
	for _, c := range configs {
		if c.Buyer != buyer || c.Status != StatusMinor {
			continue
		}
		if SameAQLLevel(c.AQLLevel, DisabledSeverityAQL) {
			a.Minor = false
			a.Major = false
		}
	}
	return a
}
