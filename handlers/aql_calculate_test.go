package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fincheck/services"
	"fincheck/testhelpers"
)

func TestHandleAQLCalculate(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)

	tests := []struct {
		name   string
		req    services.CalculationRequest
		letter string
		size   int
		ac, re int
	}{
		{"general II lot 1000", services.CalculationRequest{InspectionType: "General", Level: "II", InspectedQty: 1000, AQLLevel: 2.5}, "J", 80, 5, 6},
		{"general II lot 500", services.CalculationRequest{InspectionType: "General", Level: "II", InspectedQty: 500, AQLLevel: 2.5}, "H", 50, 3, 4},
		{"special S-1 lot 8", services.CalculationRequest{InspectionType: "Special", Level: "S-1", InspectedQty: 8, AQLLevel: 4.0}, "A", 2, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, "/aql/calculate", tt.req)
			rec := httptest.NewRecorder()
			if err := HandleAQLCalculate(app)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var got services.CalculationResult
			decodeResponse(t, rec, &got)
			if got.SampleLetter != tt.letter || got.SampleSize != tt.size || got.Ac != tt.ac || got.Re != tt.re {
				t.Errorf("got %s/%d %d/%d, want %s/%d %d/%d",
					got.SampleLetter, got.SampleSize, got.Ac, got.Re, tt.letter, tt.size, tt.ac, tt.re)
			}
		})
	}
}

func TestHandleAQLCalculate_Errors(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)

	tests := []struct {
		name   string
		req    services.CalculationRequest
		status int
		kind   string
	}{
		{"zero qty", services.CalculationRequest{InspectionType: "General", Level: "II", InspectedQty: 0, AQLLevel: 2.5}, http.StatusBadRequest, KindValidation},
		{"level of other type", services.CalculationRequest{InspectionType: "General", Level: "S-2", InspectedQty: 100, AQLLevel: 2.5}, http.StatusBadRequest, KindValidation},
		{"below first band", services.CalculationRequest{InspectionType: "General", Level: "II", InspectedQty: 1, AQLLevel: 2.5}, http.StatusNotFound, KindNotFound},
		{"unknown AQL level", services.CalculationRequest{InspectionType: "General", Level: "II", InspectedQty: 1000, AQLLevel: 3.3}, http.StatusNotFound, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, "/aql/calculate", tt.req)
			rec := httptest.NewRecorder()
			HandleAQLCalculate(app)(newTestRequestEvent(app, req, rec))
			assertErrorKind(t, rec, tt.status, tt.kind)
		})
	}
}

func TestHandleAQLCalculate_InvalidJSON(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/aql/calculate", nil)
	rec := httptest.NewRecorder()
	HandleAQLCalculate(app)(newTestRequestEvent(app, req, rec))

	assertErrorKind(t, rec, http.StatusBadRequest, KindValidation)
}

func newFormRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}

func TestHandleAQLCalculateForm(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)

	req := newFormRequest("/aql/calculate/form", url.Values{
		"InspectionType": {"General"},
		"Level":          {"II"},
		"InspectedQty":   {"800"},
		"AQLLevel":       {"2.5"},
	})
	rec := httptest.NewRecorder()
	if err := HandleAQLCalculateForm(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`<dd class="sample-letter">J</dd>`,
		`<dd class="sample-size">80</dd>`,
		`<dd class="accept">5</dd>`,
		`<dd class="reject">6</dd>`,
	)
}

func TestHandleAQLCalculateForm_Errors(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)

	tests := []struct {
		name   string
		qty    string
		aql    string
		status int
		kind   string
	}{
		{"qty not a number", "lots", "2.5", http.StatusBadRequest, KindValidation},
		{"qty blank", "", "2.5", http.StatusBadRequest, KindValidation},
		{"qty zero", "0", "2.5", http.StatusBadRequest, KindValidation},
		{"aql not a number", "800", "x", http.StatusBadRequest, KindValidation},
		{"unknown AQL level", "800", "3.3", http.StatusNotFound, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newFormRequest("/aql/calculate/form", url.Values{
				"InspectionType": {"General"},
				"Level":          {"II"},
				"InspectedQty":   {tt.qty},
				"AQLLevel":       {tt.aql},
			})
			rec := httptest.NewRecorder()
			HandleAQLCalculateForm(app)(newTestRequestEvent(app, req, rec))

			assertErrorKind(t, rec, tt.status, tt.kind)
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none so the result slot keeps its content")
			}
			if !strings.Contains(rec.Header().Get("HX-Trigger"), "showToast") {
				t.Error("expected an error toast")
			}
		})
	}
}

func TestHandleAQLCalculateForm_AcceptsGroupedQty(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)

	req := newFormRequest("/aql/calculate/form", url.Values{
		"InspectionType": {"General"},
		"Level":          {"II"},
		"InspectedQty":   {"1,000"},
		"AQLLevel":       {"2.5"},
	})
	rec := httptest.NewRecorder()
	if err := HandleAQLCalculateForm(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `<dd class="sample-letter">J</dd>`)
}
