package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"

	"fincheck/services"
)

// SetToast sets the HX-Trigger response header to show a toast notification
// on the client via HTMX, merging into any HX-Trigger JSON already set.
// It also sets a flash cookie so toasts survive regular (non-HTMX) redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(payload)
	if err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     "flash_toast",
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false, // JS needs to read it
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorToast sets an error toast and prevents HTMX from swapping the error text into the DOM.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// Error kinds carried in JSON error bodies.
const (
	KindValidation     = "validation"
	KindNotFound       = "not_found"
	KindSchemaMismatch = "schema_mismatch"
	KindInternal       = "internal"
)

// ErrorBody is the JSON body of every failed API call.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

const genericErrorMessage = "Something went wrong. Please try again."

// classifyError maps engine errors to a status code and error kind.
func classifyError(err error) (int, ErrorBody) {
	var ve *services.ValidationError
	var nf *services.NotFoundError
	var sm *services.SchemaMismatchError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorBody{Kind: KindValidation, Message: ve.Error(), Detail: ve}
	case errors.As(err, &nf):
		return http.StatusNotFound, ErrorBody{Kind: KindNotFound, Message: nf.Error(), Detail: nf}
	case errors.As(err, &sm):
		return http.StatusConflict, ErrorBody{Kind: KindSchemaMismatch, Message: sm.Error(), Detail: sm}
	default:
		return http.StatusInternalServerError, ErrorBody{Kind: KindInternal, Message: genericErrorMessage}
	}
}

// writeServiceError writes err as a JSON error body. Unclassified errors are
// logged under scope and reported with a generic message. HTMX requests also
// get an error toast.
func writeServiceError(e *core.RequestEvent, scope string, err error) error {
	status, body := classifyError(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", scope, err)
	}
	if e.Request.Header.Get("HX-Request") == "true" {
		SetToast(e, "error", body.Message)
		e.Response.Header().Set("HX-Reswap", "none")
	}
	return e.JSON(status, body)
}

// badRequest reports a malformed request body as a validation error.
func badRequest(e *core.RequestEvent, message string) error {
	return writeServiceError(e, "", &services.ValidationError{Message: message})
}
