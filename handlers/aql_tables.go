package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/services"
)

// sampleLetterUpdates is the body of PUT /aql-sample-letters/bulk-update.
type sampleLetterUpdates struct {
	Updates []services.SampleSizeLetterRow `json:"updates"`
}

// samplingPlanUpdates is the body of PUT /aql-values/bulk-update.
type samplingPlanUpdates struct {
	Updates []services.SamplingPlanRow `json:"updates"`
}

// HandleSampleLettersList returns every code letter row.
// Route: GET /aql-sample-letters
func HandleSampleLettersList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rows, err := services.NewRecordStore(app).FetchSampleLetters(e.Request.Context())
		if err != nil {
			return writeServiceError(e, "sample_letters_list", err)
		}
		return e.JSON(http.StatusOK, rows)
	}
}

// HandleSampleLettersMatrix returns the batch range x level view.
// Route: GET /aql-sample-letters/matrix
func HandleSampleLettersMatrix(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rows, err := services.NewRecordStore(app).FetchSampleLetters(e.Request.Context())
		if err != nil {
			return writeServiceError(e, "sample_letters_matrix", err)
		}
		return e.JSON(http.StatusOK, services.BuildCodeLetterMatrix(rows))
	}
}

// HandleSampleLettersBulkUpdate replaces code letter rows by id.
// Route: PUT /aql-sample-letters/bulk-update
func HandleSampleLettersBulkUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body sampleLetterUpdates
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return badRequest(e, "invalid JSON body")
		}
		if len(body.Updates) == 0 {
			return badRequest(e, "updates cannot be empty")
		}

		saved, err := services.NewRecordStore(app).BulkUpdateSampleLetters(e.Request.Context(), body.Updates)
		if err != nil {
			return writeServiceError(e, "sample_letters_bulk_update", err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

// HandleSamplingPlansList returns every sampling plan row.
// Route: GET /aql-values
func HandleSamplingPlansList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rows, err := services.NewRecordStore(app).FetchSamplingPlans(e.Request.Context())
		if err != nil {
			return writeServiceError(e, "sampling_plans_list", err)
		}
		return e.JSON(http.StatusOK, rows)
	}
}

// HandleSamplingPlansMatrix returns the letter x AQL level view, or 409 when
// the rows disagree on their AQL levels.
// Route: GET /aql-values/matrix
func HandleSamplingPlansMatrix(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		m, err := loadPlanMatrix(e, app)
		if err != nil {
			return writeServiceError(e, "sampling_plans_matrix", err)
		}
		return e.JSON(http.StatusOK, m)
	}
}

// HandleSamplingPlansBulkUpdate replaces sampling plan rows by id. The update
// is rejected with 409 when it would leave the table with mixed AQL levels.
// Route: PUT /aql-values/bulk-update
func HandleSamplingPlansBulkUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body samplingPlanUpdates
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return badRequest(e, "invalid JSON body")
		}
		if len(body.Updates) == 0 {
			return badRequest(e, "updates cannot be empty")
		}

		store := services.NewRecordStore(app)
		current, err := store.FetchSamplingPlans(e.Request.Context())
		if err != nil {
			return writeServiceError(e, "sampling_plans_bulk_update", err)
		}
		if _, err := services.BuildSamplingPlanMatrix(overlayPlans(current, body.Updates)); err != nil {
			return writeServiceError(e, "sampling_plans_bulk_update", err)
		}

		saved, err := store.BulkUpdateSamplingPlans(e.Request.Context(), body.Updates)
		if err != nil {
			return writeServiceError(e, "sampling_plans_bulk_update", err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

// overlayPlans returns current with rows replaced by same-id updates.
func overlayPlans(current, updates []services.SamplingPlanRow) []services.SamplingPlanRow {
	byID := make(map[string]services.SamplingPlanRow, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}
	out := make([]services.SamplingPlanRow, len(current))
	for i, r := range current {
		if u, ok := byID[r.ID]; ok {
			out[i] = u
			continue
		}
		out[i] = r
	}
	return out
}

func loadPlanMatrix(e *core.RequestEvent, app *pocketbase.PocketBase) (services.SamplingPlanMatrix, error) {
	rows, err := services.NewRecordStore(app).FetchSamplingPlans(e.Request.Context())
	if err != nil {
		return services.SamplingPlanMatrix{}, err
	}
	return services.BuildSamplingPlanMatrix(rows)
}
