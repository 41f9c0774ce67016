package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// MigrateOrphanBuyerConfigs finds buyer AQL configurations whose buyer name
// has no matching buyers record and creates the missing buyers.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateOrphanBuyerConfigs(app *pocketbase.PocketBase) error {
	configsCol, err := app.FindCollectionByNameOrId("aql_buyer_configs")
	if err != nil {
		return fmt.Errorf("migrate: could not find aql_buyer_configs collection: %w", err)
	}

	buyersCol, err := app.FindCollectionByNameOrId("buyers")
	if err != nil {
		return fmt.Errorf("migrate: could not find buyers collection: %w", err)
	}

	configs, err := app.FindAllRecords(configsCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query buyer configs: %w", err)
	}
	if len(configs) == 0 {
		return nil
	}

	buyers, err := app.FindAllRecords(buyersCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query buyers: %w", err)
	}
	known := make(map[string]bool, len(buyers))
	for _, b := range buyers {
		known[b.GetString("name")] = true
	}

	var orphans []string
	for _, c := range configs {
		name := c.GetString("buyer")
		if name == "" || known[name] {
			continue
		}
		known[name] = true
		orphans = append(orphans, name)
	}
	if len(orphans) == 0 {
		return nil
	}

	log.Printf("migrate: found %d buyer(s) referenced by AQL configs but missing from buyers -- creating...\n", len(orphans))

	for _, name := range orphans {
		rec := core.NewRecord(buyersCol)
		rec.Set("name", name)
		if err := app.Save(rec); err != nil {
			log.Printf("migrate: failed to create buyer %q: %v\n", name, err)
			continue
		}
		log.Printf("migrate: created buyer %q (%s)\n", name, rec.Id)
	}

	log.Println("migrate: orphan buyer config migration complete.")
	return nil
}
