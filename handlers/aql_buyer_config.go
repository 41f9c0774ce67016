package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/services"
)

// HandleBuyerConfigList returns the buyer AQL rows, optionally for one buyer.
// Route: GET /aql-buyer-config?buyer=
func HandleBuyerConfigList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rows, err := services.NewRecordStore(app).FetchBuyerConfigs(e.Request.Context())
		if err != nil {
			return writeServiceError(e, "buyer_config_list", err)
		}

		if buyer := strings.TrimSpace(e.Request.URL.Query().Get("buyer")); buyer != "" {
			rows = filterBuyer(rows, buyer)
		}
		return e.JSON(http.StatusOK, rows)
	}
}

// HandleBuyerConfigUpsert replaces a buyer's three AQL rows. SampleData is
// recomputed from the current reference tables.
// Route: POST /aql-buyer-config/upsert
func HandleBuyerConfigUpsert(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var rows []services.BuyerAQLConfig
		if err := json.NewDecoder(e.Request.Body).Decode(&rows); err != nil {
			return badRequest(e, "invalid JSON body")
		}

		store := services.NewRecordStore(app)
		tables, err := services.LoadTables(e.Request.Context(), store)
		if err != nil {
			return writeServiceError(e, "buyer_config_upsert", err)
		}

		resolved, err := services.ResolveBuyerConfigRows(rows, tables)
		if err != nil {
			return writeServiceError(e, "buyer_config_upsert", err)
		}

		saved, err := store.UpsertBuyerConfig(e.Request.Context(), resolved)
		if err != nil {
			return writeServiceError(e, "buyer_config_upsert", err)
		}

		if e.Request.Header.Get("HX-Request") == "true" {
			SetToast(e, "success", "AQL configuration saved for "+saved[0].Buyer)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

// HandleBuyerStatuses reports which severities the buyer can select.
// Route: GET /aql-buyer-config/{buyer}/statuses
func HandleBuyerStatuses(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		buyer := strings.TrimSpace(e.Request.PathValue("buyer"))
		if buyer == "" {
			return badRequest(e, "buyer cannot be blank")
		}

		rows, err := services.NewRecordStore(app).FetchBuyerConfigs(e.Request.Context())
		if err != nil {
			return writeServiceError(e, "buyer_statuses", err)
		}
		return e.JSON(http.StatusOK, services.AvailableStatuses(rows, buyer))
	}
}

func filterBuyer(rows []services.BuyerAQLConfig, buyer string) []services.BuyerAQLConfig {
	out := make([]services.BuyerAQLConfig, 0, len(services.Statuses))
	for _, r := range rows {
		if r.Buyer == buyer {
			out = append(out, r)
		}
	}
	return out
}
