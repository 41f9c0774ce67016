package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"fincheck/collections"
	"fincheck/services"
)

// KindConflict is reported when a delete would orphan dependent rows.
const KindConflict = "conflict"

// masterDef resolves the {kind} path segment.
func masterDef(e *core.RequestEvent) (collections.MasterCollection, error) {
	kind := e.Request.PathValue("kind")
	def, ok := collections.MasterBySlug(kind)
	if !ok {
		return def, &services.NotFoundError{What: "master data kind", Key: kind}
	}
	return def, nil
}

// masterRecordJSON flattens a record into {"_id", field...}.
func masterRecordJSON(def collections.MasterCollection, rec *core.Record) map[string]any {
	out := map[string]any{"_id": rec.Id}
	for _, f := range def.Fields {
		out[f.Name] = rec.Get(f.Name)
	}
	return out
}

// applyMasterFields copies the known fields of body onto rec. With partial set
// only fields present in body are touched.
func applyMasterFields(def collections.MasterCollection, rec *core.Record, body map[string]any, partial bool) error {
	for _, f := range def.Fields {
		raw, present := body[f.Name]
		if !present && partial {
			continue
		}

		var value any
		switch f.Kind {
		case collections.KindNumber:
			if raw == nil || raw == "" {
				value = 0
				break
			}
			n, err := cast.ToFloat64E(raw)
			if err != nil {
				return &services.ValidationError{Field: f.Name, Message: "must be a number"}
			}
			value = n
		case collections.KindBool:
			b, err := cast.ToBoolE(raw)
			if err != nil {
				return &services.ValidationError{Field: f.Name, Message: "must be true or false"}
			}
			value = b
		case collections.KindJSON:
			if raw == nil {
				raw = []any{}
			}
			value = raw
		default:
			value = strings.TrimSpace(cast.ToString(raw))
		}

		if f.Required {
			if err := validation.Validate(value, validation.Required); err != nil {
				return &services.ValidationError{Field: f.Name, Message: err.Error()}
			}
		}
		rec.Set(f.Name, value)
	}

	if def.Slug == "product-types" {
		if _, err := recordMarkers(rec); err != nil {
			return err
		}
	}
	return nil
}

// recordMarkers decodes and validates a product type's location markers.
func recordMarkers(rec *core.Record) ([]services.LocationMarker, error) {
	var markers []services.LocationMarker
	raw := strings.TrimSpace(rec.GetString("locations"))
	if raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &markers); err != nil {
			return nil, &services.ValidationError{Field: "locations", Message: "must be a list of markers"}
		}
	}
	if err := services.ValidateLocationMarkers(markers); err != nil {
		return nil, err
	}
	return markers, nil
}

// HandleMasterList returns every record of a master collection sorted by its
// display field.
// Route: GET /api/master/{kind}
func HandleMasterList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		def, err := masterDef(e)
		if err != nil {
			return writeServiceError(e, "master_list", err)
		}

		records, err := app.FindAllRecords(def.Name)
		if err != nil {
			return writeServiceError(e, "master_list", fmt.Errorf("query %s: %w", def.Name, err))
		}

		display := def.DisplayField()
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].GetString(display)) < strings.ToLower(records[j].GetString(display))
		})

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, masterRecordJSON(def, rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

// HandleMasterCreate inserts a record.
// Route: POST /api/master/{kind}
func HandleMasterCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		def, err := masterDef(e)
		if err != nil {
			return writeServiceError(e, "master_create", err)
		}

		var body map[string]any
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return badRequest(e, "invalid JSON body")
		}

		col, err := app.FindCollectionByNameOrId(def.Name)
		if err != nil {
			return writeServiceError(e, "master_create", fmt.Errorf("find %s: %w", def.Name, err))
		}

		rec := core.NewRecord(col)
		if err := applyMasterFields(def, rec, body, false); err != nil {
			return writeServiceError(e, "master_create", err)
		}
		if err := app.Save(rec); err != nil {
			return writeServiceError(e, "master_create", fmt.Errorf("save %s: %w", def.Name, err))
		}
		return e.JSON(http.StatusCreated, masterRecordJSON(def, rec))
	}
}

// HandleMasterUpdate patches the fields present in the body.
// Route: PUT /api/master/{kind}/{id}
func HandleMasterUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		def, err := masterDef(e)
		if err != nil {
			return writeServiceError(e, "master_update", err)
		}

		id := e.Request.PathValue("id")
		rec, err := app.FindRecordById(def.Name, id)
		if err != nil {
			return writeServiceError(e, "master_update", &services.NotFoundError{What: def.Label, Key: id})
		}

		var body map[string]any
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return badRequest(e, "invalid JSON body")
		}

		oldName := rec.GetString("name")
		if err := applyMasterFields(def, rec, body, true); err != nil {
			return writeServiceError(e, "master_update", err)
		}

		// Buyer configs reference buyers by name.
		if def.Name == "buyers" && oldName != rec.GetString("name") {
			has, err := services.NewRecordStore(app).BuyerHasConfig(oldName)
			if err != nil {
				return writeServiceError(e, "master_update", fmt.Errorf("check configs of %q: %w", oldName, err))
			}
			if has {
				return e.JSON(http.StatusConflict, ErrorBody{
					Kind:    KindConflict,
					Message: fmt.Sprintf("buyer %q has AQL configuration and cannot be renamed", oldName),
				})
			}
		}

		if err := app.Save(rec); err != nil {
			return writeServiceError(e, "master_update", fmt.Errorf("save %s %s: %w", def.Name, id, err))
		}
		return e.JSON(http.StatusOK, masterRecordJSON(def, rec))
	}
}

// HandleMasterDelete removes a record. A buyer that still has AQL
// configuration rows cannot be deleted.
// Route: DELETE /api/master/{kind}/{id}
func HandleMasterDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		def, err := masterDef(e)
		if err != nil {
			return writeServiceError(e, "master_delete", err)
		}

		id := e.Request.PathValue("id")
		rec, err := app.FindRecordById(def.Name, id)
		if err != nil {
			return writeServiceError(e, "master_delete", &services.NotFoundError{What: def.Label, Key: id})
		}

		if def.Name == "buyers" {
			name := rec.GetString("name")
			has, err := services.NewRecordStore(app).BuyerHasConfig(name)
			if err != nil {
				return writeServiceError(e, "master_delete", fmt.Errorf("check configs of %q: %w", name, err))
			}
			if has {
				return e.JSON(http.StatusConflict, ErrorBody{
					Kind:    KindConflict,
					Message: fmt.Sprintf("buyer %q has AQL configuration; remove it first", name),
				})
			}
		}

		if err := app.Delete(rec); err != nil {
			return writeServiceError(e, "master_delete", fmt.Errorf("delete %s %s: %w", def.Name, id, err))
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// markerRequest places a new marker from a click on the rendered image.
type markerRequest struct {
	Name   string  `json:"Name"`
	ClickX float64 `json:"ClickX"`
	ClickY float64 `json:"ClickY"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// HandleProductTypeAddMarker appends a location marker numbered after the
// highest existing one.
// Route: POST /api/master/product-types/{id}/markers
func HandleProductTypeAddMarker(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		rec, err := app.FindRecordById("product_types", id)
		if err != nil {
			return writeServiceError(e, "product_marker", &services.NotFoundError{What: "Product Type", Key: id})
		}

		var body markerRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return badRequest(e, "invalid JSON body")
		}

		x, y, err := services.PlaceMarker(body.ClickX, body.ClickY, body.Width, body.Height)
		if err != nil {
			return writeServiceError(e, "product_marker", err)
		}

		markers, err := recordMarkers(rec)
		if err != nil {
			return writeServiceError(e, "product_marker", err)
		}
		next := 1
		for _, m := range markers {
			if m.No >= next {
				next = m.No + 1
			}
		}
		markers = append(markers, services.LocationMarker{No: next, Name: strings.TrimSpace(body.Name), X: x, Y: y})
		if err := services.ValidateLocationMarkers(markers); err != nil {
			return writeServiceError(e, "product_marker", err)
		}

		rec.Set("locations", markers)
		if err := app.Save(rec); err != nil {
			return writeServiceError(e, "product_marker", fmt.Errorf("save product type %s: %w", id, err))
		}
		return e.JSON(http.StatusOK, markers)
	}
}
