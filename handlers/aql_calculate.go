package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"fincheck/services"
	"fincheck/templates"
)

// HandleAQLCalculate resolves the sample letter, sample size and Ac/Re for a
// lot. Any lookup miss is a 404 with no partial result.
// Route: POST /aql/calculate
func HandleAQLCalculate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req services.CalculationRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return badRequest(e, "invalid JSON body")
		}

		result, err := calculate(app, e, req)
		if err != nil {
			return writeServiceError(e, "aql_calculate", err)
		}
		return e.JSON(http.StatusOK, result)
	}
}

// HandleAQLCalculateForm is the console calculator: it binds the form fields
// and renders the result fragment into #aql-result.
// Route: POST /aql/calculate/form
func HandleAQLCalculateForm(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := calculationFromForm(e.Request)
		if err != nil {
			return writeServiceError(e, "aql_calculate_form", err)
		}

		result, err := calculate(app, e, req)
		if err != nil {
			return writeServiceError(e, "aql_calculate_form", err)
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.CalculationResult(result).Render(e.Request.Context(), e.Response)
	}
}

func calculate(app *pocketbase.PocketBase, e *core.RequestEvent, req services.CalculationRequest) (services.CalculationResult, error) {
	if err := req.Validate(); err != nil {
		return services.CalculationResult{}, err
	}
	tables, err := services.LoadTables(e.Request.Context(), services.NewRecordStore(app))
	if err != nil {
		return services.CalculationResult{}, err
	}
	return services.Calculate(tables, req)
}

// calculationFromForm reads a CalculationRequest from form values. Numbers
// that do not parse are reported on their field.
func calculationFromForm(r *http.Request) (services.CalculationRequest, error) {
	req := services.CalculationRequest{
		InspectionType: services.InspectionType(strings.TrimSpace(r.FormValue("InspectionType"))),
		Level:          services.InspectionLevel(strings.TrimSpace(r.FormValue("Level"))),
	}

	var err error
	if req.InspectedQty, err = formNumber(r, "InspectedQty"); err != nil {
		return req, err
	}
	if req.AQLLevel, err = formNumber(r, "AQLLevel"); err != nil {
		return req, err
	}
	return req, nil
}

func formNumber(r *http.Request, field string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(r.FormValue(field)), ",", "")
	if raw == "" {
		return 0, &services.ValidationError{Field: field, Message: "cannot be blank"}
	}
	n, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, &services.ValidationError{Field: field, Message: "must be a number"}
	}
	return n, nil
}
