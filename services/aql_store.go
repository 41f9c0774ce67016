package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/sync/errgroup"
)

// Collection names backing the AQL tables.
const (
	CollectionSampleLetters = "aql_sample_letters"
	CollectionSamplingPlans = "aql_sampling_plans"
	CollectionBuyerConfigs  = "aql_buyer_configs"
)

// AQLRepository is the persistence boundary of the AQL engine. RecordStore
// implements it on PocketBase and client.Client over the REST API.
type AQLRepository interface {
	FetchSampleLetters(ctx context.Context) ([]SampleSizeLetterRow, error)
	FetchSamplingPlans(ctx context.Context) ([]SamplingPlanRow, error)
	FetchBuyerConfigs(ctx context.Context) ([]BuyerAQLConfig, error)
	BulkUpdateSampleLetters(ctx context.Context, rows []SampleSizeLetterRow) ([]SampleSizeLetterRow, error)
	BulkUpdateSamplingPlans(ctx context.Context, rows []SamplingPlanRow) ([]SamplingPlanRow, error)
	UpsertBuyerConfig(ctx context.Context, rows []BuyerAQLConfig) ([]BuyerAQLConfig, error)
}

// LoadTables fetches both reference tables in parallel and rejects a sampling
// plan table whose rows disagree on the AQL level set.
func LoadTables(ctx context.Context, repo AQLRepository) (AQLTables, error) {
	var tables AQLTables

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := repo.FetchSampleLetters(gctx)
		if err != nil {
			return fmt.Errorf("fetch sample letters: %w", err)
		}
		tables.SampleLetters = rows
		return nil
	})
	g.Go(func() error {
		rows, err := repo.FetchSamplingPlans(gctx)
		if err != nil {
			return fmt.Errorf("fetch sampling plans: %w", err)
		}
		tables.Plans = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return AQLTables{}, err
	}

	if _, err := BuildSamplingPlanMatrix(tables.Plans); err != nil {
		return AQLTables{}, err
	}
	return tables, nil
}

// RecordStore is the PocketBase implementation of AQLRepository.
type RecordStore struct {
	app core.App
}

// NewRecordStore returns a store over app.
func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) FetchSampleLetters(ctx context.Context) ([]SampleSizeLetterRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionSampleLetters)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", CollectionSampleLetters, err)
	}

	rows := make([]SampleSizeLetterRow, 0, len(records))
	for _, rec := range records {
		row, err := sampleLetterFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	order := make(map[CodeLetterColumn]int, len(CodeLetterColumns))
	for i, c := range CodeLetterColumns {
		order[c] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return order[CodeLetterColumn{rows[i].InspectionType, rows[i].Level}] <
			order[CodeLetterColumn{rows[j].InspectionType, rows[j].Level}]
	})
	return rows, nil
}

func (s *RecordStore) FetchSamplingPlans(ctx context.Context) ([]SamplingPlanRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionSamplingPlans)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", CollectionSamplingPlans, err)
	}

	rows := make([]SamplingPlanRow, 0, len(records))
	for _, rec := range records {
		row, err := samplingPlanFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SampleSize != rows[j].SampleSize {
			return rows[i].SampleSize < rows[j].SampleSize
		}
		return rows[i].SampleLetter < rows[j].SampleLetter
	})
	return rows, nil
}

func (s *RecordStore) FetchBuyerConfigs(ctx context.Context) ([]BuyerAQLConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.app.FindAllRecords(CollectionBuyerConfigs)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", CollectionBuyerConfigs, err)
	}

	rows := make([]BuyerAQLConfig, 0, len(records))
	for _, rec := range records {
		row, err := buyerConfigFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	sortBuyerConfigs(rows)
	return rows, nil
}

// BulkUpdateSampleLetters replaces whole rows by id in one transaction.
func (s *RecordStore) BulkUpdateSampleLetters(ctx context.Context, rows []SampleSizeLetterRow) ([]SampleSizeLetterRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if r.ID == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("updates[%d]._id", i), Message: "cannot be blank"}
		}
		if !ValidLevel(r.InspectionType, r.Level) {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("updates[%d].Level", i),
				Message: fmt.Sprintf("level %q is not a %s inspection level", r.Level, r.InspectionType),
			}
		}
	}

	out := make([]SampleSizeLetterRow, len(rows))
	err := s.app.RunInTransaction(func(txApp core.App) error {
		for i, r := range rows {
			rec, err := txApp.FindRecordById(CollectionSampleLetters, r.ID)
			if err != nil {
				return &NotFoundError{What: "sample letter row", Key: r.ID}
			}
			rec.Set("inspection_type", string(r.InspectionType))
			rec.Set("level", string(r.Level))
			rec.Set("batch_ranges", r.BatchRanges)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save sample letter row %s: %w", r.ID, err)
			}
			out[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BulkUpdateSamplingPlans replaces whole rows by id in one transaction. A
// missing id aborts the whole batch.
func (s *RecordStore) BulkUpdateSamplingPlans(ctx context.Context, rows []SamplingPlanRow) ([]SamplingPlanRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if r.ID == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("updates[%d]._id", i), Message: "cannot be blank"}
		}
		if strings.TrimSpace(r.SampleLetter) == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("updates[%d].SampleLetter", i), Message: "cannot be blank"}
		}
		if r.SampleSize < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("updates[%d].SampleSize", i), Message: "must not be negative"}
		}
		for j, e := range r.AQLData {
			if e.Ac < 0 || e.Re < 0 {
				return nil, &ValidationError{Field: fmt.Sprintf("updates[%d].AQLData[%d]", i, j), Message: "Ac and Re must not be negative"}
			}
		}
	}

	out := make([]SamplingPlanRow, len(rows))
	err := s.app.RunInTransaction(func(txApp core.App) error {
		for i, r := range rows {
			rec, err := txApp.FindRecordById(CollectionSamplingPlans, r.ID)
			if err != nil {
				return &NotFoundError{What: "sampling plan row", Key: r.ID}
			}
			rec.Set("sample_letter", r.SampleLetter)
			rec.Set("sample_size", r.SampleSize)
			rec.Set("aql_data", r.AQLData)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save sampling plan %s: %w", r.SampleLetter, err)
			}
			out[i] = r.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertBuyerConfig deletes every row of the buyer and inserts rows in their
// place inside one transaction.
func (s *RecordStore) UpsertBuyerConfig(ctx context.Context, rows []BuyerAQLConfig) ([]BuyerAQLConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateBuyerConfigRows(rows); err != nil {
		return nil, err
	}
	buyer := strings.TrimSpace(rows[0].Buyer)

	out := make([]BuyerAQLConfig, len(rows))
	err := s.app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId(CollectionBuyerConfigs)
		if err != nil {
			return fmt.Errorf("find %s: %w", CollectionBuyerConfigs, err)
		}

		existing, err := txApp.FindRecordsByFilter(col, "buyer = {:buyer}", "", 0, 0,
			map[string]any{"buyer": buyer})
		if err != nil {
			return fmt.Errorf("query existing config for %q: %w", buyer, err)
		}
		for _, rec := range existing {
			if err := txApp.Delete(rec); err != nil {
				return fmt.Errorf("delete config %s: %w", rec.Id, err)
			}
		}

		for i, r := range rows {
			rec := core.NewRecord(col)
			rec.Set("buyer", buyer)
			rec.Set("inspection_type", string(r.InspectionType))
			rec.Set("level", string(r.Level))
			rec.Set("status", string(r.Status))
			rec.Set("aql_level", r.AQLLevel)
			rec.Set("sample_data", nonNilSampleData(r.SampleData))
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save %s config for %q: %w", r.Status, buyer, err)
			}
			r.ID = rec.Id
			r.Buyer = buyer
			out[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortBuyerConfigs(out)
	return out, nil
}

// BuyerHasConfig reports whether any AQL configuration row references buyer.
func (s *RecordStore) BuyerHasConfig(buyer string) (bool, error) {
	records, err := s.app.FindRecordsByFilter(CollectionBuyerConfigs, "buyer = {:buyer}", "", 1, 0,
		map[string]any{"buyer": buyer})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

func sampleLetterFromRecord(rec *core.Record) (SampleSizeLetterRow, error) {
	row := SampleSizeLetterRow{
		ID:             rec.Id,
		InspectionType: InspectionType(rec.GetString("inspection_type")),
		Level:          InspectionLevel(rec.GetString("level")),
	}
	if err := decodeJSONField(rec, "batch_ranges", &row.BatchRanges); err != nil {
		return row, fmt.Errorf("decode batch ranges of %s: %w", rec.Id, err)
	}
	return row, nil
}

func samplingPlanFromRecord(rec *core.Record) (SamplingPlanRow, error) {
	row := SamplingPlanRow{
		ID:           rec.Id,
		SampleLetter: rec.GetString("sample_letter"),
		SampleSize:   rec.GetInt("sample_size"),
	}
	if err := decodeJSONField(rec, "aql_data", &row.AQLData); err != nil {
		return row, fmt.Errorf("decode AQL data of %s: %w", row.SampleLetter, err)
	}
	return row, nil
}

func buyerConfigFromRecord(rec *core.Record) (BuyerAQLConfig, error) {
	row := BuyerAQLConfig{
		ID:             rec.Id,
		Buyer:          rec.GetString("buyer"),
		InspectionType: InspectionType(rec.GetString("inspection_type")),
		Level:          InspectionLevel(rec.GetString("level")),
		Status:         Status(rec.GetString("status")),
		AQLLevel:       rec.GetFloat("aql_level"),
	}
	if err := decodeJSONField(rec, "sample_data", &row.SampleData); err != nil {
		return row, fmt.Errorf("decode sample data of %s: %w", rec.Id, err)
	}
	return row, nil
}

// decodeJSONField unmarshals a json field, treating an unset value as empty.
func decodeJSONField(rec *core.Record, key string, dst any) error {
	raw := strings.TrimSpace(rec.GetString(key))
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func sortBuyerConfigs(rows []BuyerAQLConfig) {
	order := map[Status]int{StatusMinor: 0, StatusMajor: 1, StatusCritical: 2}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Buyer != rows[j].Buyer {
			return rows[i].Buyer < rows[j].Buyer
		}
		return order[rows[i].Status] < order[rows[j].Status]
	})
}

func nonNilSampleData(d []BuyerSampleEntry) []BuyerSampleEntry {
	if d == nil {
		return []BuyerSampleEntry{}
	}
	return d
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
