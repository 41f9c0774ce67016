package collections_test

import (
	"testing"

	"fincheck/collections"
	"fincheck/testhelpers"
)

func TestMigrateOrphanBuyerConfigs_CreatesBuyers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestBuyer(t, app, "ANF")
	testhelpers.CreateTestBuyerConfigRow(t, app, "ANF", "General", "II", "Minor", 4.0)
	testhelpers.CreateTestBuyerConfigRow(t, app, "Gap", "General", "II", "Minor", 4.0)
	testhelpers.CreateTestBuyerConfigRow(t, app, "Gap", "General", "II", "Major", 2.5)

	if err := collections.MigrateOrphanBuyerConfigs(app); err != nil {
		t.Fatalf("MigrateOrphanBuyerConfigs() error: %v", err)
	}

	buyersCol, _ := app.FindCollectionByNameOrId("buyers")
	buyers, _ := app.FindAllRecords(buyersCol)
	if len(buyers) != 2 {
		t.Fatalf("expected 2 buyers, got %d", len(buyers))
	}
	gap, _ := app.FindRecordsByFilter(buyersCol, "name = {:n}", "", 1, 0, map[string]any{"n": "Gap"})
	if len(gap) != 1 {
		t.Error("expected buyer Gap to be created")
	}
}

func TestMigrateOrphanBuyerConfigs_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestBuyerConfigRow(t, app, "Gap", "General", "II", "Minor", 4.0)

	if err := collections.MigrateOrphanBuyerConfigs(app); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if err := collections.MigrateOrphanBuyerConfigs(app); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	buyersCol, _ := app.FindCollectionByNameOrId("buyers")
	buyers, _ := app.FindAllRecords(buyersCol)
	if len(buyers) != 1 {
		t.Errorf("expected 1 buyer, got %d", len(buyers))
	}
}

func TestMigrateSampleLetterRows_FillsMissingLevels(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSampleLetterRow(t, app, "General", "II", []testhelpers.BatchRange{
		{BatchName: "2-8", Min: 2, SampleLetter: "A"},
		{BatchName: "9-15", Min: 9, SampleLetter: "B"},
	})

	if err := collections.MigrateSampleLetterRows(app); err != nil {
		t.Fatalf("MigrateSampleLetterRows() error: %v", err)
	}

	lettersCol, _ := app.FindCollectionByNameOrId("aql_sample_letters")
	all, _ := app.FindAllRecords(lettersCol)
	if len(all) != 7 {
		t.Fatalf("expected 7 code letter rows, got %d", len(all))
	}

	s1, _ := app.FindRecordsByFilter(lettersCol, "level = {:l}", "", 1, 0, map[string]any{"l": "S-1"})
	if len(s1) != 1 {
		t.Fatal("S-1 row not created")
	}
	testhelpers.AssertHTMLContains(t, s1[0].GetString("batch_ranges"), `"BatchName":"9-15"`, `"SampleLetter":"-"`)
}

func TestMigrateSampleLetterRows_EmptyTableNoop(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.MigrateSampleLetterRows(app); err != nil {
		t.Fatalf("MigrateSampleLetterRows() error: %v", err)
	}

	lettersCol, _ := app.FindCollectionByNameOrId("aql_sample_letters")
	all, _ := app.FindAllRecords(lettersCol)
	if len(all) != 0 {
		t.Errorf("expected no rows, got %d", len(all))
	}
}
