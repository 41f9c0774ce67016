// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// NewSeededTestApp is NewTestApp with the Z1.4 AQL tables and master data seeded.
func NewSeededTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	app := NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("failed to seed test app: %v", err)
	}
	return app
}

// BatchRange mirrors one element of aql_sample_letters.batch_ranges.
type BatchRange struct {
	BatchName    string  `json:"BatchName"`
	Min          float64 `json:"Min"`
	SampleLetter string  `json:"SampleLetter"`
}

// AcRe mirrors one element of aql_sampling_plans.aql_data.
type AcRe struct {
	AQLLevel float64 `json:"AQLLevel"`
	Ac       int     `json:"Ac"`
	Re       int     `json:"Re"`
}

// CreateTestBuyer creates a buyer record with the given name and returns it.
func CreateTestBuyer(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("buyers")
	if err != nil {
		t.Fatalf("failed to find buyers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test buyer: %v", err)
	}

	return record
}

// CreateTestSampleLetterRow creates a code letter row for an inspection type and level.
func CreateTestSampleLetterRow(t *testing.T, app *pocketbase.PocketBase, inspectionType, level string, ranges []BatchRange) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("aql_sample_letters")
	if err != nil {
		t.Fatalf("failed to find aql_sample_letters collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("inspection_type", inspectionType)
	record.Set("level", level)
	record.Set("batch_ranges", ranges)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test code letter row: %v", err)
	}

	return record
}

// CreateTestSamplingPlan creates a sampling plan row for a sample letter.
func CreateTestSamplingPlan(t *testing.T, app *pocketbase.PocketBase, letter string, size int, entries []AcRe) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("aql_sampling_plans")
	if err != nil {
		t.Fatalf("failed to find aql_sampling_plans collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("sample_letter", letter)
	record.Set("sample_size", size)
	record.Set("aql_data", entries)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test sampling plan: %v", err)
	}

	return record
}

// CreateTestBuyerConfigRow creates one persisted buyer AQL configuration row.
func CreateTestBuyerConfigRow(t *testing.T, app *pocketbase.PocketBase, buyer, inspectionType, level, status string, aql float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("aql_buyer_configs")
	if err != nil {
		t.Fatalf("failed to find aql_buyer_configs collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("buyer", buyer)
	record.Set("inspection_type", inspectionType)
	record.Set("level", level)
	record.Set("status", status)
	record.Set("aql_level", aql)
	record.Set("sample_data", []any{})

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test buyer config row: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
