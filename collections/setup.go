package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Select values shared by the AQL collections.
var (
	inspectionTypeValues = []string{"General", "Special"}
	levelValues          = []string{"I", "II", "III", "S-1", "S-2", "S-3", "S-4"}
	statusValues         = []string{"Minor", "Major", "Critical"}
)

// Setup programmatically creates/ensures the AQL reference collections and
// every master data collection exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "aql_sample_letters", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "inspection_type",
			Required:  true,
			Values:    inspectionTypeValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "level",
			Required:  true,
			Values:    levelValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "batch_ranges", MaxSize: 1 << 20})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_aql_sample_letters_type_level", true, "inspection_type, level", "")
	})

	ensureCollection(app, "aql_sampling_plans", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "sample_letter", Required: true, Max: 4})
		c.Fields.Add(&core.NumberField{Name: "sample_size", OnlyInt: true})
		c.Fields.Add(&core.JSONField{Name: "aql_data", MaxSize: 1 << 20})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_aql_sampling_plans_letter", true, "sample_letter", "")
	})

	ensureCollection(app, "aql_buyer_configs", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "buyer", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "inspection_type",
			Required:  true,
			Values:    inspectionTypeValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "level",
			Required:  true,
			Values:    levelValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    statusValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "aql_level", Required: true})
		c.Fields.Add(&core.JSONField{Name: "sample_data", MaxSize: 1 << 20})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_aql_buyer_configs_buyer_status", true, "buyer, status", "")
	})

	for _, def := range MasterCollections {
		def := def
		ensureCollection(app, def.Name, func(c *core.Collection) {
			for _, f := range def.Fields {
				c.Fields.Add(f.schemaField())
			}
			c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
			c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		})
	}
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
