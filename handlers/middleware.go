package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fincheck/templates"
)

type contextKey string

const ActiveBuyerKey contextKey = "activeBuyer"
const HeaderDataKey contextKey = "headerData"

// activeBuyerCookie holds the id of the selected buyer record.
const activeBuyerCookie = "active_buyer"

// GetActiveBuyer extracts the active buyer from the request context.
func GetActiveBuyer(r *http.Request) *templates.ActiveBuyer {
	if val, ok := r.Context().Value(ActiveBuyerKey).(*templates.ActiveBuyer); ok {
		return val
	}
	return nil
}

// GetHeaderData extracts the pre-built HeaderData from the request context.
func GetHeaderData(r *http.Request) templates.HeaderData {
	if val, ok := r.Context().Value(HeaderDataKey).(templates.HeaderData); ok {
		return val
	}
	return templates.HeaderData{}
}

// ActiveBuyerMiddleware reads the "active_buyer" cookie, loads the buyer
// record, builds HeaderData with the full buyer list, and stores both in the
// request context so handlers and templates can use them.
func ActiveBuyerMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var activeBuyer *templates.ActiveBuyer

		cookie, err := e.Request.Cookie(activeBuyerCookie)
		if err == nil && cookie.Value != "" {
			rec, err := app.FindRecordById("buyers", cookie.Value)
			if err == nil {
				activeBuyer = &templates.ActiveBuyer{
					ID:   rec.Id,
					Name: rec.GetString("name"),
				}
			} else {
				log.Printf("middleware: active buyer %s not found, clearing cookie", cookie.Value)
				clearActiveBuyerCookie(e)
			}
		}

		var selectorItems []templates.BuyerSelectorItem
		if buyersCol, _ := app.FindCollectionByNameOrId("buyers"); buyersCol != nil {
			records, _ := app.FindAllRecords(buyersCol)
			for _, rec := range records {
				selectorItems = append(selectorItems, templates.BuyerSelectorItem{
					ID:       rec.Id,
					Name:     rec.GetString("name"),
					IsActive: activeBuyer != nil && rec.Id == activeBuyer.ID,
				})
			}
		}
		sort.SliceStable(selectorItems, func(i, j int) bool {
			return selectorItems[i].Name < selectorItems[j].Name
		})

		headerData := templates.HeaderData{
			ActiveBuyer: activeBuyer,
			Buyers:      selectorItems,
		}

		ctx := context.WithValue(e.Request.Context(), ActiveBuyerKey, activeBuyer)
		ctx = context.WithValue(ctx, HeaderDataKey, headerData)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

func clearActiveBuyerCookie(e *core.RequestEvent) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:   activeBuyerCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
