package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleBuyerActivate sets the active buyer cookie and returns a full page
// redirect via HX-Redirect so the console re-renders for that buyer.
func HandleBuyerActivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		buyerID := e.Request.PathValue("id")

		rec, err := app.FindRecordById("buyers", buyerID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Buyer not found")
		}

		// 30-day expiry
		http.SetCookie(e.Response, &http.Cookie{
			Name:     activeBuyerCookie,
			Value:    buyerID,
			Path:     "/",
			MaxAge:   60 * 60 * 24 * 30,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		SetToast(e, "success", "Buyer "+rec.GetString("name")+" activated")

		e.Response.Header().Set("HX-Redirect", "/aql")
		return e.String(http.StatusOK, "OK")
	}
}

// HandleBuyerDeactivate clears the active buyer cookie and redirects to /aql.
func HandleBuyerDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clearActiveBuyerCookie(e)

		SetToast(e, "success", "Buyer cleared")

		e.Response.Header().Set("HX-Redirect", "/aql")
		return e.String(http.StatusOK, "OK")
	}
}
