package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/config"
	"fincheck/services"
)

// pasteRequest is the body of POST /aql-values/paste.
type pasteRequest struct {
	Text string `json:"text"`
}

// HandlePlanPaste applies a tab separated Ac/Re grid to the current sampling
// plans and returns the preview. Nothing is persisted.
// Route: POST /aql-values/paste
func HandlePlanPaste(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body pasteRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return badRequest(e, "invalid JSON body")
		}

		m, err := loadPlanMatrix(e, app)
		if err != nil {
			return writeServiceError(e, "plan_paste", err)
		}

		result, err := services.ApplyPastedGrid(m.Rows, body.Text, m.AQLLevels)
		if err != nil {
			return writeServiceError(e, "plan_paste", err)
		}
		return e.JSON(http.StatusOK, result)
	}
}

// HandlePlanImport reads an uploaded .xlsx or .csv Ac/Re grid and returns the
// same preview as a paste.
// Route: POST /aql-values/import
func HandlePlanImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// max 10MB
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return badRequest(e, "file too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return badRequest(e, "please select a file to upload")
		}
		defer file.Close()

		m, err := loadPlanMatrix(e, app)
		if err != nil {
			return writeServiceError(e, "plan_import", err)
		}

		result, err := services.ImportPlanGrid(file, header.Filename, m)
		if err != nil {
			return writeServiceError(e, "plan_import", err)
		}
		return e.JSON(http.StatusOK, result)
	}
}

// loadChart fetches both tables and builds the two matrices.
func loadChart(e *core.RequestEvent, app *pocketbase.PocketBase) (services.CodeLetterMatrix, services.SamplingPlanMatrix, error) {
	tables, err := services.LoadTables(e.Request.Context(), services.NewRecordStore(app))
	if err != nil {
		return services.CodeLetterMatrix{}, services.SamplingPlanMatrix{}, err
	}
	plans, err := services.BuildSamplingPlanMatrix(tables.Plans)
	if err != nil {
		return services.CodeLetterMatrix{}, services.SamplingPlanMatrix{}, err
	}
	return services.BuildCodeLetterMatrix(tables.SampleLetters), plans, nil
}

// HandleAQLExportExcel downloads both matrices as a workbook.
// Route: GET /aql-values/export/excel
func HandleAQLExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		letters, plans, err := loadChart(e, app)
		if err != nil {
			return writeServiceError(e, "export_excel", err)
		}

		xlsxBytes, err := services.GenerateAQLWorkbook(letters, plans)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("AQL_Tables_%s.xlsx", time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleAQLExportPDF downloads the printable AQL chart.
// Route: GET /aql-values/export/pdf
func HandleAQLExportPDF(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		letters, plans, err := loadChart(e, app)
		if err != nil {
			return writeServiceError(e, "export_pdf", err)
		}

		now := time.Now()
		meta := services.ChartMeta{
			Title:       cfg.Export.Title,
			Author:      cfg.Export.Author,
			GeneratedOn: now.Format("02 Jan 2006"),
		}
		pdfBytes, err := services.GenerateAQLChartPDF(meta, letters, plans)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("AQL_Chart_%s.pdf", now.Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
