package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type batchRangeDef struct {
	BatchName    string  `json:"BatchName"`
	Min          float64 `json:"Min"`
	SampleLetter string  `json:"SampleLetter"`
}

type aqlEntryDef struct {
	AQLLevel float64 `json:"AQLLevel"`
	Ac       int     `json:"Ac"`
	Re       int     `json:"Re"`
}

type letterRowDef struct {
	inspectionType string
	level          string
	letters        string // one letter per lot size band
}

// lotBands are the Z1.4 Table I lot size bands.
var lotBands = []struct {
	name string
	min  float64
}{
	{"2-8", 2},
	{"9-15", 9},
	{"16-25", 16},
	{"26-50", 26},
	{"51-90", 51},
	{"91-150", 91},
	{"151-280", 151},
	{"281-500", 281},
	{"501-1200", 501},
	{"1201-3200", 1201},
	{"3201-10000", 3201},
	{"10001-35000", 10001},
	{"35001-150000", 35001},
	{"150001-500000", 150001},
	{"500001+", 500001},
}

// Letters per band. J follows H because I is not used as a code letter.
var letterRows = []letterRowDef{
	{"General", "I", "AABCCDEFGHJKLMN"},
	{"General", "II", "ABCDEFGHJKLMNPQ"},
	{"General", "III", "BCDEFGHJKLMNPQR"},
	{"Special", "S-1", "AAAABBBBCCCCDDD"},
	{"Special", "S-2", "AAABBBCCCDDDEEE"},
	{"Special", "S-3", "AABBCCDDEEFFGGH"},
	{"Special", "S-4", "AABCCDEEFGGHJJK"},
}

// sampleSizes maps each code letter to its normal inspection sample size.
var sampleSizes = []struct {
	letter string
	size   int
}{
	{"A", 2}, {"B", 3}, {"C", 5}, {"D", 8}, {"E", 13}, {"F", 20}, {"G", 32}, {"H", 50},
	{"J", 80}, {"K", 125}, {"L", 200}, {"M", 315}, {"N", 500}, {"P", 800}, {"Q", 1250}, {"R", 2000},
}

// SeedAQLLevels are the AQL columns of the seeded sampling plan table.
var SeedAQLLevels = []float64{
	0.010, 0.015, 0.025, 0.040, 0.065, 0.10, 0.15, 0.25,
	0.40, 0.65, 1.0, 1.5, 2.5, 4.0, 6.5, 10,
}

// acReLadder holds the Ac/Re pairs along the Z1.4 diagonals. Row i (letter)
// and column j (AQL level) sit on diagonal i+j; diagonals below the first
// plan resolve to 0/1 and those past the last plan to 21/22.
var acReLadder = []struct{ ac, re int }{
	{0, 1}, {0, 1}, {1, 2}, {2, 3}, {3, 4}, {5, 6}, {7, 8}, {10, 11}, {14, 15}, {21, 22},
}

const ladderStart = 15

func seedAcRe(letterIdx, levelIdx int) (int, int) {
	k := letterIdx + levelIdx - ladderStart
	if k < 0 {
		k = 0
	}
	if k >= len(acReLadder) {
		k = len(acReLadder) - 1
	}
	return acReLadder[k].ac, acReLadder[k].re
}

// Master data seeded alongside the AQL tables.
var (
	seedBuyers          = []string{"ANF", "Costco", "Aritzia", "Reitmans", "Elite"}
	seedShippingStages  = []string{"Inline", "Pre-Final", "Final", "Re-Final"}
	seedDefectCategories = []struct{ name, code string }{
		{"Fabric", "FAB"},
		{"Workmanship", "WRK"},
		{"Measurement", "MEA"},
		{"Embellishment", "EMB"},
		{"Packing", "PAC"},
	}
)

// Seed populates the AQL reference tables and the basic master data. It is
// safe to call on every startup because each part returns early when its
// collection already holds records.
func Seed(app *pocketbase.PocketBase) error {
	if err := SeedAQL(app, false); err != nil {
		return err
	}
	return seedMasterData(app)
}

// SeedAQL writes the Z1.4 code letter and sampling plan tables. With force
// set, existing rows of both tables are deleted first.
func SeedAQL(app *pocketbase.PocketBase, force bool) error {
	lettersCol, err := app.FindCollectionByNameOrId("aql_sample_letters")
	if err != nil {
		return fmt.Errorf("seed: could not find aql_sample_letters collection: %w", err)
	}
	plansCol, err := app.FindCollectionByNameOrId("aql_sampling_plans")
	if err != nil {
		return fmt.Errorf("seed: could not find aql_sampling_plans collection: %w", err)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		existingLetters, err := txApp.FindAllRecords(lettersCol)
		if err != nil {
			return fmt.Errorf("seed: could not query aql_sample_letters: %w", err)
		}
		existingPlans, err := txApp.FindAllRecords(plansCol)
		if err != nil {
			return fmt.Errorf("seed: could not query aql_sampling_plans: %w", err)
		}

		if !force && (len(existingLetters) > 0 || len(existingPlans) > 0) {
			return nil // already seeded
		}

		for _, rec := range append(existingLetters, existingPlans...) {
			if err := txApp.Delete(rec); err != nil {
				return fmt.Errorf("seed: could not clear %s: %w", rec.Id, err)
			}
		}

		log.Println("seed: inserting Z1.4 code letter and sampling plan tables …")

		for _, lr := range letterRows {
			ranges := make([]batchRangeDef, len(lotBands))
			for i, band := range lotBands {
				ranges[i] = batchRangeDef{
					BatchName:    band.name,
					Min:          band.min,
					SampleLetter: string(lr.letters[i]),
				}
			}
			r := core.NewRecord(lettersCol)
			r.Set("inspection_type", lr.inspectionType)
			r.Set("level", lr.level)
			r.Set("batch_ranges", ranges)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: could not save code letters %s %s: %w", lr.inspectionType, lr.level, err)
			}
		}

		for i, ss := range sampleSizes {
			entries := make([]aqlEntryDef, len(SeedAQLLevels))
			for j, level := range SeedAQLLevels {
				ac, re := seedAcRe(i, j)
				entries[j] = aqlEntryDef{AQLLevel: level, Ac: ac, Re: re}
			}
			r := core.NewRecord(plansCol)
			r.Set("sample_letter", ss.letter)
			r.Set("sample_size", ss.size)
			r.Set("aql_data", entries)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: could not save sampling plan %s: %w", ss.letter, err)
			}
		}

		return nil
	})
}

// seedMasterData inserts buyers, shipping stages and defect categories when
// the buyers collection is empty.
func seedMasterData(app *pocketbase.PocketBase) error {
	buyersCol, err := app.FindCollectionByNameOrId("buyers")
	if err != nil {
		return fmt.Errorf("seed: could not find buyers collection: %w", err)
	}
	existing, err := app.FindAllRecords(buyersCol)
	if err != nil {
		return fmt.Errorf("seed: could not query buyers: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	stagesCol, err := app.FindCollectionByNameOrId("shipping_stages")
	if err != nil {
		return fmt.Errorf("seed: could not find shipping_stages collection: %w", err)
	}
	categoriesCol, err := app.FindCollectionByNameOrId("defect_categories")
	if err != nil {
		return fmt.Errorf("seed: could not find defect_categories collection: %w", err)
	}

	log.Println("seed: buyers collection is empty – inserting master data …")

	for _, name := range seedBuyers {
		r := core.NewRecord(buyersCol)
		r.Set("name", name)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: could not save buyer %q: %w", name, err)
		}
	}
	for i, name := range seedShippingStages {
		r := core.NewRecord(stagesCol)
		r.Set("name", name)
		r.Set("sequence", i+1)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: could not save shipping stage %q: %w", name, err)
		}
	}
	for _, c := range seedDefectCategories {
		r := core.NewRecord(categoriesCol)
		r.Set("name", c.name)
		r.Set("code", c.code)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: could not save defect category %q: %w", c.name, err)
		}
	}
	return nil
}
