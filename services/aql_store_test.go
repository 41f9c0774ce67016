package services_test

import (
	"context"
	"errors"
	"testing"

	"fincheck/services"
	"fincheck/testhelpers"
)

func TestRecordStore_FetchSeededTables(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)
	store := services.NewRecordStore(app)

	tables, err := services.LoadTables(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if len(tables.SampleLetters) != 7 {
		t.Errorf("expected 7 code letter rows, got %d", len(tables.SampleLetters))
	}
	if tables.SampleLetters[0].Level != services.LevelI || tables.SampleLetters[6].Level != services.LevelS4 {
		t.Errorf("code letter rows not in column order: %s ... %s",
			tables.SampleLetters[0].Level, tables.SampleLetters[6].Level)
	}
	if len(tables.Plans) != 16 || tables.Plans[0].SampleLetter != "A" {
		t.Errorf("unexpected plans: %d rows, first %q", len(tables.Plans), tables.Plans[0].SampleLetter)
	}

	got, err := services.Calculate(tables, services.CalculationRequest{
		InspectionType: services.InspectionGeneral, Level: services.LevelII, InspectedQty: 800, AQLLevel: 2.5,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got.SampleLetter != "J" || got.SampleSize != 80 || got.Ac != 5 || got.Re != 6 {
		t.Errorf("General II 800 @2.5 = %+v, want J/80 5/6", got)
	}
}

func TestRecordStore_BulkUpdateSamplingPlans(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	a := testhelpers.CreateTestSamplingPlan(t, app, "A", 2, []testhelpers.AcRe{{AQLLevel: 1.0, Ac: 0, Re: 1}})
	testhelpers.CreateTestSamplingPlan(t, app, "B", 3, []testhelpers.AcRe{{AQLLevel: 1.0, Ac: 0, Re: 1}})
	store := services.NewRecordStore(app)
	ctx := context.Background()

	_, err := store.BulkUpdateSamplingPlans(ctx, []services.SamplingPlanRow{
		{ID: a.Id, SampleLetter: "A", SampleSize: 2, AQLData: []services.AQLEntry{{AQLLevel: 1.0, Ac: 1, Re: 2}}},
	})
	if err != nil {
		t.Fatalf("BulkUpdateSamplingPlans: %v", err)
	}

	rows, _ := store.FetchSamplingPlans(ctx)
	if e := rows[0].AQLData[0]; e.Ac != 1 || e.Re != 2 {
		t.Errorf("A@1.0 = %d/%d, want 1/2", e.Ac, e.Re)
	}
}

func TestRecordStore_BulkUpdateIsAtomic(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	a := testhelpers.CreateTestSamplingPlan(t, app, "A", 2, []testhelpers.AcRe{{AQLLevel: 1.0, Ac: 0, Re: 1}})
	store := services.NewRecordStore(app)
	ctx := context.Background()

	_, err := store.BulkUpdateSamplingPlans(ctx, []services.SamplingPlanRow{
		{ID: a.Id, SampleLetter: "A", SampleSize: 2, AQLData: []services.AQLEntry{{AQLLevel: 1.0, Ac: 9, Re: 10}}},
		{ID: "missing", SampleLetter: "B", SampleSize: 3, AQLData: []services.AQLEntry{{AQLLevel: 1.0, Ac: 9, Re: 10}}},
	})
	if !services.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	rows, _ := store.FetchSamplingPlans(ctx)
	if e := rows[0].AQLData[0]; e.Ac != 0 || e.Re != 1 {
		t.Errorf("failed batch left A@1.0 at %d/%d", e.Ac, e.Re)
	}
}

func TestRecordStore_BulkUpdateValidation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	store := services.NewRecordStore(app)

	var ve *services.ValidationError
	_, err := store.BulkUpdateSamplingPlans(context.Background(), []services.SamplingPlanRow{{SampleLetter: "A"}})
	if !errors.As(err, &ve) {
		t.Errorf("missing id: expected ValidationError, got %v", err)
	}
	_, err = store.BulkUpdateSampleLetters(context.Background(), []services.SampleSizeLetterRow{
		{ID: "x", InspectionType: services.InspectionGeneral, Level: services.LevelS1},
	})
	if !errors.As(err, &ve) {
		t.Errorf("bad level: expected ValidationError, got %v", err)
	}
}

func TestRecordStore_BulkUpdateRejectsNegativeAcRe(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	a := testhelpers.CreateTestSamplingPlan(t, app, "A", 2, []testhelpers.AcRe{{AQLLevel: 1.0, Ac: 0, Re: 1}})
	store := services.NewRecordStore(app)
	ctx := context.Background()

	_, err := store.BulkUpdateSamplingPlans(ctx, []services.SamplingPlanRow{
		{ID: a.Id, SampleLetter: "A", SampleSize: 2, AQLData: []services.AQLEntry{{AQLLevel: 1.0, Ac: -5, Re: 1}}},
	})
	var ve *services.ValidationError
	if !errors.As(err, &ve) || ve.Field != "updates[0].AQLData[0]" {
		t.Fatalf("expected ValidationError on updates[0].AQLData[0], got %v", err)
	}

	rows, _ := store.FetchSamplingPlans(ctx)
	if e := rows[0].AQLData[0]; e.Ac != 0 || e.Re != 1 {
		t.Errorf("rejected update stored A@1.0 = %d/%d", e.Ac, e.Re)
	}
}

func TestRecordStore_BulkUpdateSampleLetters(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := testhelpers.CreateTestSampleLetterRow(t, app, "General", "II", []testhelpers.BatchRange{
		{BatchName: "2-8", Min: 2, SampleLetter: "A"},
	})
	store := services.NewRecordStore(app)
	ctx := context.Background()

	_, err := store.BulkUpdateSampleLetters(ctx, []services.SampleSizeLetterRow{{
		ID: rec.Id, InspectionType: services.InspectionGeneral, Level: services.LevelII,
		BatchRanges: []services.BatchRange{
			{BatchName: "2-8", Min: 2, SampleLetter: "B"},
			{BatchName: "9-15", Min: 9, SampleLetter: "C"},
		},
	}})
	if err != nil {
		t.Fatalf("BulkUpdateSampleLetters: %v", err)
	}

	rows, _ := store.FetchSampleLetters(ctx)
	if len(rows) != 1 || len(rows[0].BatchRanges) != 2 || rows[0].BatchRanges[0].SampleLetter != "B" {
		t.Errorf("unexpected rows after update: %+v", rows)
	}
}

func TestRecordStore_UpsertBuyerConfigRoundTrip(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)
	store := services.NewRecordStore(app)
	ctx := context.Background()
	testhelpers.CreateTestBuyerConfigRow(t, app, "Costco", "General", "II", "Minor", 4.0)

	tables, err := services.LoadTables(ctx, store)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}

	in := services.BuyerConfigInput{Buyer: "ANF", InspectionType: services.InspectionGeneral, Level: services.LevelII, Minor: 4.0, Major: 2.5, Critical: 0.065}
	if _, err := services.UpsertBuyerConfig(ctx, store, tables, in); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	in.Level = services.LevelIII
	in.Minor = 0.01
	written, err := services.UpsertBuyerConfig(ctx, store, tables, in)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	all, err := store.FetchBuyerConfigs(ctx)
	if err != nil {
		t.Fatalf("FetchBuyerConfigs: %v", err)
	}
	var anf []services.BuyerAQLConfig
	for _, c := range all {
		if c.Buyer == "ANF" {
			anf = append(anf, c)
		}
	}
	if len(anf) != 3 {
		t.Fatalf("expected exactly 3 ANF rows, got %d", len(anf))
	}
	for i := range anf {
		if anf[i].ID != written[i].ID || anf[i].Level != services.LevelIII || anf[i].AQLLevel != written[i].AQLLevel {
			t.Errorf("row %d = %+v, want %+v", i, anf[i], written[i])
		}
	}
	if len(all) != 4 {
		t.Errorf("other buyers' rows changed: %d rows total", len(all))
	}

	a := services.AvailableStatuses(all, "ANF")
	if a.Minor || a.Major || !a.Critical {
		t.Errorf("availability = %+v", a)
	}
}

func TestRecordStore_BuyerHasConfig(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestBuyerConfigRow(t, app, "ANF", "General", "II", "Minor", 4.0)
	store := services.NewRecordStore(app)

	if has, err := store.BuyerHasConfig("ANF"); err != nil || !has {
		t.Errorf("ANF: has=%v err=%v", has, err)
	}
	if has, err := store.BuyerHasConfig("Costco"); err != nil || has {
		t.Errorf("Costco: has=%v err=%v", has, err)
	}
}

func TestRecordStore_CancelledContext(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := services.NewRecordStore(app).FetchSamplingPlans(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
