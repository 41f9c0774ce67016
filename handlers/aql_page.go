package handlers

import (
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/config"
	"fincheck/services"
	"fincheck/templates"
)

// HandleAQLPage renders the AQL console: both reference matrices plus the
// active buyer's configuration.
// Route: GET /aql
func HandleAQLPage(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		store := services.NewRecordStore(app)

		letters, err := store.FetchSampleLetters(ctx)
		if err != nil {
			log.Printf("aql_page: could not load code letters: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		plans, err := store.FetchSamplingPlans(ctx)
		if err != nil {
			log.Printf("aql_page: could not load sampling plans: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		data := templates.AQLPageData{
			CodeLetters:           services.BuildCodeLetterMatrix(letters),
			DefaultInspectionType: cfg.Console.DefaultInspectionType,
			DefaultLevel:          cfg.Console.DefaultLevel,
		}

		if m, err := services.BuildSamplingPlanMatrix(plans); err != nil {
			data.PlanError = err.Error()
		} else {
			data.Plans = m
		}

		if buyer := GetActiveBuyer(e.Request); buyer != nil {
			configs, err := store.FetchBuyerConfigs(ctx)
			if err != nil {
				log.Printf("aql_page: could not load buyer configs: %v", err)
				return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			data.BuyerConfigs = filterBuyer(configs, buyer.Name)
			avail := services.AvailableStatuses(configs, buyer.Name)
			data.Availability = &avail
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.AQLContent(data)
		} else {
			component = templates.AQLPage(data, GetHeaderData(e.Request))
		}
		return component.Render(ctx, e.Response)
	}
}
