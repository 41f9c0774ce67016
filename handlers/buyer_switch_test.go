package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fincheck/testhelpers"
)

func TestHandleBuyerActivate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	buyer := testhelpers.CreateTestBuyer(t, app, "ANF")

	handler := HandleBuyerActivate(app)

	req := httptest.NewRequest(http.MethodPost, "/buyers/"+buyer.Id+"/activate", nil)
	req.SetPathValue("id", buyer.Id)
	rec := httptest.NewRecorder()

	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/aql")

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "active_buyer" && c.Value == buyer.Id {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected active_buyer cookie to be set")
	}
}

func TestHandleBuyerActivate_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleBuyerActivate(app)

	req := httptest.NewRequest(http.MethodPost, "/buyers/nonexistent/activate", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()

	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleBuyerDeactivate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleBuyerDeactivate(app)

	req := httptest.NewRequest(http.MethodPost, "/buyers/deactivate", nil)
	rec := httptest.NewRecorder()

	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/aql")

	for _, c := range rec.Result().Cookies() {
		if c.Name == "active_buyer" && c.MaxAge >= 0 {
			t.Error("expected active_buyer cookie to be cleared")
		}
	}
}
