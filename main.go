package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/collections"
	"fincheck/config"
	"fincheck/handlers"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()

	app.RootCmd.AddCommand(newSeedAQLCommand(app))
	app.RootCmd.AddCommand(newExportAQLCommand(app, cfg))

	// Create collections, seed and migrate on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if cfg.Console.SeedAQL {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		if err := collections.MigrateOrphanBuyerConfigs(app); err != nil {
			log.Printf("Warning: buyer config migration failed: %v", err)
		}
		if err := collections.MigrateSampleLetterRows(app); err != nil {
			log.Printf("Warning: sample letter migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Resolve the active buyer for every request
		se.Router.BindFunc(handlers.ActiveBuyerMiddleware(app))

		// ── Buyer activation ─────────────────────────────────────
		se.Router.POST("/buyers/{id}/activate", handlers.HandleBuyerActivate(app))
		se.Router.POST("/buyers/deactivate", handlers.HandleBuyerDeactivate(app))

		// ── AQL console page ─────────────────────────────────────
		se.Router.GET("/aql", handlers.HandleAQLPage(app, cfg))
		se.Router.POST("/aql/calculate", handlers.HandleAQLCalculate(app))
		se.Router.POST("/aql/calculate/form", handlers.HandleAQLCalculateForm(app))

		// ── Code letter table ────────────────────────────────────
		se.Router.GET("/aql-sample-letters", handlers.HandleSampleLettersList(app))
		se.Router.GET("/aql-sample-letters/matrix", handlers.HandleSampleLettersMatrix(app))
		se.Router.PUT("/aql-sample-letters/bulk-update", handlers.HandleSampleLettersBulkUpdate(app))

		// ── Sampling plan table ──────────────────────────────────
		se.Router.GET("/aql-values", handlers.HandleSamplingPlansList(app))
		se.Router.GET("/aql-values/matrix", handlers.HandleSamplingPlansMatrix(app))
		se.Router.PUT("/aql-values/bulk-update", handlers.HandleSamplingPlansBulkUpdate(app))
		se.Router.POST("/aql-values/paste", handlers.HandlePlanPaste(app))
		se.Router.POST("/aql-values/import", handlers.HandlePlanImport(app))
		se.Router.GET("/aql-values/export/excel", handlers.HandleAQLExportExcel(app))
		se.Router.GET("/aql-values/export/pdf", handlers.HandleAQLExportPDF(app, cfg))

		// ── Buyer AQL configuration ──────────────────────────────
		se.Router.GET("/aql-buyer-config", handlers.HandleBuyerConfigList(app))
		se.Router.POST("/aql-buyer-config/upsert", handlers.HandleBuyerConfigUpsert(app))
		se.Router.GET("/aql-buyer-config/{buyer}/statuses", handlers.HandleBuyerStatuses(app))

		// ── Master data ──────────────────────────────────────────
		se.Router.POST("/api/master/product-types/{id}/markers", handlers.HandleProductTypeAddMarker(app))
		se.Router.GET("/api/master/{kind}", handlers.HandleMasterList(app))
		se.Router.POST("/api/master/{kind}", handlers.HandleMasterCreate(app))
		se.Router.PUT("/api/master/{kind}/{id}", handlers.HandleMasterUpdate(app))
		se.Router.DELETE("/api/master/{kind}/{id}", handlers.HandleMasterDelete(app))

		// Redirect home to the AQL console
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/aql")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
