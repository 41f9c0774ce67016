package collections

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/services"
)

// MigrateSampleLetterRows creates an aql_sample_letters row for every
// inspection type and level pair that is missing one. New rows copy the batch
// names and minimums of an existing row with every letter set to "-", so the
// code letter matrix stays rectangular. Safe to call on every startup.
func MigrateSampleLetterRows(app *pocketbase.PocketBase) error {
	lettersCol, err := app.FindCollectionByNameOrId("aql_sample_letters")
	if err != nil {
		return fmt.Errorf("migrate_letters: could not find aql_sample_letters collection: %w", err)
	}

	rows, err := app.FindAllRecords(lettersCol)
	if err != nil {
		return fmt.Errorf("migrate_letters: could not query aql_sample_letters: %w", err)
	}
	if len(rows) == 0 {
		// Nothing to copy ranges from; seeding fills the table.
		return nil
	}

	existing := make(map[string]bool, len(rows))
	for _, r := range rows {
		existing[r.GetString("inspection_type")+"|"+r.GetString("level")] = true
	}

	template, err := blankRanges(rows[0])
	if err != nil {
		return fmt.Errorf("migrate_letters: %w", err)
	}

	created := 0
	for _, inspectionType := range services.InspectionTypes {
		for _, level := range services.LevelsByType[inspectionType] {
			if existing[string(inspectionType)+"|"+string(level)] {
				continue
			}
			rec := core.NewRecord(lettersCol)
			rec.Set("inspection_type", string(inspectionType))
			rec.Set("level", string(level))
			rec.Set("batch_ranges", template)
			if err := app.Save(rec); err != nil {
				log.Printf("migrate_letters: failed to create %s %s: %v\n", inspectionType, level, err)
				continue
			}
			created++
		}
	}

	if created > 0 {
		log.Printf("migrate_letters: created %d missing code letter row(s).\n", created)
	}
	return nil
}

// blankRanges copies the batch ranges of rec with the letters cleared.
func blankRanges(rec *core.Record) ([]batchRangeDef, error) {
	var ranges []batchRangeDef
	raw := rec.GetString("batch_ranges")
	if raw == "" || raw == "null" {
		return ranges, nil
	}
	if err := json.Unmarshal([]byte(raw), &ranges); err != nil {
		return nil, fmt.Errorf("decode batch_ranges of %s: %w", rec.Id, err)
	}
	for i := range ranges {
		ranges[i].SampleLetter = "-"
	}
	return ranges, nil
}
