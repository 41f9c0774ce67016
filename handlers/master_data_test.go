package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fincheck/services"
	"fincheck/testhelpers"
)

func TestHandleMasterCreateAndList(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	for _, name := range []string{"Packing", "Fabric"} {
		req := newJSONRequest(t, http.MethodPost, "/api/master/defect-categories", map[string]any{"name": name, "code": name[:3]})
		req.SetPathValue("kind", "defect-categories")
		rec := httptest.NewRecorder()
		if err := HandleMasterCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/master/defect-categories", nil)
	req.SetPathValue("kind", "defect-categories")
	rec := httptest.NewRecorder()
	if err := HandleMasterList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var items []map[string]any
	decodeResponse(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["name"] != "Fabric" {
		t.Errorf("expected items sorted by name, first = %v", items[0]["name"])
	}
	if items[0]["_id"] == "" {
		t.Error("expected _id in list item")
	}
}

func TestHandleMasterCreate_RequiredField(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newJSONRequest(t, http.MethodPost, "/api/master/lines", map[string]any{"name": "Line without number"})
	req.SetPathValue("kind", "lines")
	rec := httptest.NewRecorder()
	HandleMasterCreate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusBadRequest, KindValidation)
}

func TestHandleMasterCreate_UnknownKind(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newJSONRequest(t, http.MethodPost, "/api/master/widgets", map[string]any{"name": "x"})
	req.SetPathValue("kind", "widgets")
	rec := httptest.NewRecorder()
	HandleMasterCreate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusNotFound, KindNotFound)
}

func TestHandleMasterCreate_InvalidMarkers(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newJSONRequest(t, http.MethodPost, "/api/master/product-types", map[string]any{
		"name":      "Polo Shirt",
		"locations": []map[string]any{{"No": 1, "Name": "Collar", "X": 120, "Y": 10}},
	})
	req.SetPathValue("kind", "product-types")
	rec := httptest.NewRecorder()
	HandleMasterCreate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusBadRequest, KindValidation)
}

func TestHandleMasterUpdate_Partial(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	buyer := testhelpers.CreateTestBuyer(t, app, "ANF")

	req := newJSONRequest(t, http.MethodPut, "/api/master/buyers/"+buyer.Id, map[string]any{"country": "USA"})
	req.SetPathValue("kind", "buyers")
	req.SetPathValue("id", buyer.Id)
	rec := httptest.NewRecorder()
	if err := HandleMasterUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, _ := app.FindRecordById("buyers", buyer.Id)
	if updated.GetString("name") != "ANF" || updated.GetString("country") != "USA" {
		t.Errorf("buyer = %s/%s, want ANF/USA", updated.GetString("name"), updated.GetString("country"))
	}
}

func TestHandleMasterUpdate_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newJSONRequest(t, http.MethodPut, "/api/master/buyers/nope", map[string]any{"country": "USA"})
	req.SetPathValue("kind", "buyers")
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	HandleMasterUpdate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusNotFound, KindNotFound)
}

func TestHandleMasterUpdate_RenameBuyerWithConfig(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	buyer := testhelpers.CreateTestBuyer(t, app, "ANF")
	testhelpers.CreateTestBuyerConfigRow(t, app, "ANF", "General", "II", "Minor", 4.0)

	req := newJSONRequest(t, http.MethodPut, "/api/master/buyers/"+buyer.Id, map[string]any{"name": "Abercrombie"})
	req.SetPathValue("kind", "buyers")
	req.SetPathValue("id", buyer.Id)
	rec := httptest.NewRecorder()
	HandleMasterUpdate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusConflict, KindConflict)
	if stored, _ := app.FindRecordById("buyers", buyer.Id); stored.GetString("name") != "ANF" {
		t.Errorf("buyer renamed to %q", stored.GetString("name"))
	}
}

func TestHandleMasterUpdate_RenameFailsWhenConfigLookupFails(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	buyer := testhelpers.CreateTestBuyer(t, app, "ANF")
	configs, err := app.FindCollectionByNameOrId("aql_buyer_configs")
	if err != nil {
		t.Fatalf("find collection: %v", err)
	}
	if err := app.Delete(configs); err != nil {
		t.Fatalf("delete collection: %v", err)
	}

	req := newJSONRequest(t, http.MethodPut, "/api/master/buyers/"+buyer.Id, map[string]any{"name": "Abercrombie"})
	req.SetPathValue("kind", "buyers")
	req.SetPathValue("id", buyer.Id)
	rec := httptest.NewRecorder()
	HandleMasterUpdate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusInternalServerError, KindInternal)
	if stored, _ := app.FindRecordById("buyers", buyer.Id); stored.GetString("name") != "ANF" {
		t.Errorf("buyer renamed to %q without a config check", stored.GetString("name"))
	}
}

func TestHandleMasterDelete_BuyerWithConfig(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	buyer := testhelpers.CreateTestBuyer(t, app, "ANF")
	testhelpers.CreateTestBuyerConfigRow(t, app, "ANF", "General", "II", "Minor", 4.0)

	req := httptest.NewRequest(http.MethodDelete, "/api/master/buyers/"+buyer.Id, nil)
	req.SetPathValue("kind", "buyers")
	req.SetPathValue("id", buyer.Id)
	rec := httptest.NewRecorder()
	HandleMasterDelete(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusConflict, KindConflict)
	if _, err := app.FindRecordById("buyers", buyer.Id); err != nil {
		t.Error("buyer was deleted despite its AQL configuration")
	}
}

func TestHandleMasterDelete_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	buyer := testhelpers.CreateTestBuyer(t, app, "Elite")

	req := httptest.NewRequest(http.MethodDelete, "/api/master/buyers/"+buyer.Id, nil)
	req.SetPathValue("kind", "buyers")
	req.SetPathValue("id", buyer.Id)
	rec := httptest.NewRecorder()
	if err := HandleMasterDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("buyers", buyer.Id); err == nil {
		t.Error("buyer still exists after delete")
	}
}

func TestHandleProductTypeAddMarker(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	create := newJSONRequest(t, http.MethodPost, "/api/master/product-types", map[string]any{
		"name":      "Polo Shirt",
		"locations": []map[string]any{{"No": 1, "Name": "Collar", "X": 50, "Y": 5}},
	})
	create.SetPathValue("kind", "product-types")
	createRec := httptest.NewRecorder()
	HandleMasterCreate(app)(newTestRequestEvent(app, create, createRec))
	var created map[string]any
	decodeResponse(t, createRec, &created)
	id, _ := created["_id"].(string)

	req := newJSONRequest(t, http.MethodPost, "/api/master/product-types/"+id+"/markers", map[string]any{
		"Name": "Left Sleeve", "ClickX": 100, "ClickY": 150, "Width": 400, "Height": 300,
	})
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	if err := HandleProductTypeAddMarker(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var markers []services.LocationMarker
	decodeResponse(t, rec, &markers)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if m := markers[1]; m.No != 2 || m.X != 25 || m.Y != 50 {
		t.Errorf("new marker = %+v, want No 2 at 25/50", m)
	}
}
