package collections_test

import (
	"encoding/json"
	"testing"

	"fincheck/collections"
	"fincheck/testhelpers"
)

func TestSeed_CreatesData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	lettersCol, _ := app.FindCollectionByNameOrId("aql_sample_letters")
	letters, err := app.FindAllRecords(lettersCol)
	if err != nil {
		t.Fatalf("query aql_sample_letters error: %v", err)
	}
	if len(letters) != 7 {
		t.Errorf("expected 7 code letter rows, got %d", len(letters))
	}

	plansCol, _ := app.FindCollectionByNameOrId("aql_sampling_plans")
	plans, _ := app.FindAllRecords(plansCol)
	if len(plans) != 16 {
		t.Errorf("expected 16 sampling plans, got %d", len(plans))
	}

	buyersCol, _ := app.FindCollectionByNameOrId("buyers")
	buyers, _ := app.FindAllRecords(buyersCol)
	if len(buyers) == 0 {
		t.Error("expected buyers to be seeded")
	}

	stagesCol, _ := app.FindCollectionByNameOrId("shipping_stages")
	stages, _ := app.FindAllRecords(stagesCol)
	if len(stages) != 4 {
		t.Errorf("expected 4 shipping stages, got %d", len(stages))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	plansCol, _ := app.FindCollectionByNameOrId("aql_sampling_plans")
	plans, _ := app.FindAllRecords(plansCol)
	if len(plans) != 16 {
		t.Errorf("expected 16 sampling plans after idempotent seed, got %d", len(plans))
	}
}

func TestSeed_GeneralIIBands(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	lettersCol, _ := app.FindCollectionByNameOrId("aql_sample_letters")
	rows, _ := app.FindRecordsByFilter(
		lettersCol,
		"inspection_type = {:t} && level = {:l}",
		"", 1, 0,
		map[string]any{"t": "General", "l": "II"},
	)
	if len(rows) == 0 {
		t.Fatal("General II row not found")
	}

	var ranges []testhelpers.BatchRange
	if err := json.Unmarshal([]byte(rows[0].GetString("batch_ranges")), &ranges); err != nil {
		t.Fatalf("decode batch_ranges: %v", err)
	}
	if len(ranges) != 15 {
		t.Fatalf("expected 15 bands, got %d", len(ranges))
	}
	if ranges[8].BatchName != "501-1200" || ranges[8].Min != 501 || ranges[8].SampleLetter != "J" {
		t.Errorf("band 9 = %+v, want 501-1200 / 501 / J", ranges[8])
	}
}

func TestSeed_PlanAcRe(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	plansCol, _ := app.FindCollectionByNameOrId("aql_sampling_plans")
	tests := []struct {
		letter string
		size   int
		aql    float64
		ac, re int
	}{
		{"J", 80, 2.5, 5, 6},
		{"K", 125, 2.5, 7, 8},
		{"A", 2, 0.010, 0, 1},
		{"R", 2000, 10, 21, 22},
	}
	for _, tt := range tests {
		rows, _ := app.FindRecordsByFilter(plansCol, "sample_letter = {:l}", "", 1, 0, map[string]any{"l": tt.letter})
		if len(rows) == 0 {
			t.Errorf("plan %s not found", tt.letter)
			continue
		}
		if rows[0].GetInt("sample_size") != tt.size {
			t.Errorf("%s sample_size = %d, want %d", tt.letter, rows[0].GetInt("sample_size"), tt.size)
		}
		var entries []testhelpers.AcRe
		if err := json.Unmarshal([]byte(rows[0].GetString("aql_data")), &entries); err != nil {
			t.Fatalf("decode aql_data: %v", err)
		}
		found := false
		for _, e := range entries {
			if e.AQLLevel == tt.aql {
				found = true
				if e.Ac != tt.ac || e.Re != tt.re {
					t.Errorf("%s@%v = %d/%d, want %d/%d", tt.letter, tt.aql, e.Ac, e.Re, tt.ac, tt.re)
				}
			}
		}
		if !found {
			t.Errorf("%s has no entry for %v", tt.letter, tt.aql)
		}
	}
}

func TestSeed_SkipsWhenDataExists(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	testhelpers.CreateTestSamplingPlan(t, app, "Z", 7, []testhelpers.AcRe{{AQLLevel: 1.0, Ac: 0, Re: 1}})

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	plansCol, _ := app.FindCollectionByNameOrId("aql_sampling_plans")
	plans, _ := app.FindAllRecords(plansCol)
	if len(plans) != 1 {
		t.Errorf("expected 1 plan (pre-existing only), got %d", len(plans))
	}
}

func TestSeedAQL_ForceReplaces(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSamplingPlan(t, app, "Z", 7, []testhelpers.AcRe{{AQLLevel: 1.0, Ac: 0, Re: 1}})

	if err := collections.SeedAQL(app, true); err != nil {
		t.Fatalf("SeedAQL(force) error: %v", err)
	}

	plansCol, _ := app.FindCollectionByNameOrId("aql_sampling_plans")
	plans, _ := app.FindAllRecords(plansCol)
	if len(plans) != 16 {
		t.Errorf("expected 16 plans after forced reseed, got %d", len(plans))
	}
	for _, p := range plans {
		if p.GetString("sample_letter") == "Z" {
			t.Error("forced reseed kept the pre-existing Z plan")
		}
	}
}
