package services

import (
	"context"
	"errors"
	"sync/atomic"
)

func asValidation(err error, target **ValidationError) bool {
	return errors.As(err, target)
}

// fakeRepo is an in-memory AQLRepository that counts backend calls.
type fakeRepo struct {
	letters []SampleSizeLetterRow
	plans   []SamplingPlanRow
	configs []BuyerAQLConfig

	calls   atomic.Int64
	saveErr error
}

func (f *fakeRepo) FetchSampleLetters(ctx context.Context) ([]SampleSizeLetterRow, error) {
	f.calls.Add(1)
	return append([]SampleSizeLetterRow(nil), f.letters...), nil
}

func (f *fakeRepo) FetchSamplingPlans(ctx context.Context) ([]SamplingPlanRow, error) {
	f.calls.Add(1)
	return cloneRows(f.plans), nil
}

func (f *fakeRepo) FetchBuyerConfigs(ctx context.Context) ([]BuyerAQLConfig, error) {
	f.calls.Add(1)
	return append([]BuyerAQLConfig(nil), f.configs...), nil
}

func (f *fakeRepo) BulkUpdateSampleLetters(ctx context.Context, rows []SampleSizeLetterRow) ([]SampleSizeLetterRow, error) {
	f.calls.Add(1)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.letters = rows
	return rows, nil
}

func (f *fakeRepo) BulkUpdateSamplingPlans(ctx context.Context, rows []SamplingPlanRow) ([]SamplingPlanRow, error) {
	f.calls.Add(1)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.plans = cloneRows(rows)
	return cloneRows(rows), nil
}

func (f *fakeRepo) UpsertBuyerConfig(ctx context.Context, rows []BuyerAQLConfig) ([]BuyerAQLConfig, error) {
	f.calls.Add(1)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	kept := f.configs[:0:0]
	for _, c := range f.configs {
		if c.Buyer != rows[0].Buyer {
			kept = append(kept, c)
		}
	}
	f.configs = append(kept, rows...)
	return rows, nil
}

var errBackendDown = errors.New("backend down")
