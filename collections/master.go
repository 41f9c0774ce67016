package collections

import "github.com/pocketbase/pocketbase/core"

// FieldKind is the storage kind of a master data field.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindJSON   FieldKind = "json"
)

// MasterField describes one editable field of a master data collection.
type MasterField struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// MasterCollection describes a flat CRUD collection behind one console screen.
type MasterCollection struct {
	Slug   string
	Name   string
	Label  string
	Fields []MasterField
}

// MasterCollections lists the master data screens of the console. The first
// required field of each is its display name.
var MasterCollections = []MasterCollection{
	{
		Slug:  "buyers",
		Name:  "buyers",
		Label: "Buyer",
		Fields: []MasterField{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "code", Kind: KindText},
			{Name: "country", Kind: KindText},
		},
	},
	{
		Slug:  "lines",
		Name:  "production_lines",
		Label: "Production Line",
		Fields: []MasterField{
			{Name: "line_no", Kind: KindText, Required: true},
			{Name: "name", Kind: KindText},
			{Name: "factory", Kind: KindText},
		},
	},
	{
		Slug:  "tables",
		Name:  "qc_tables",
		Label: "QC Table",
		Fields: []MasterField{
			{Name: "table_no", Kind: KindText, Required: true},
			{Name: "line", Kind: KindText},
		},
	},
	{
		Slug:  "shipping-stages",
		Name:  "shipping_stages",
		Label: "Shipping Stage",
		Fields: []MasterField{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "sequence", Kind: KindNumber},
		},
	},
	{
		Slug:  "defect-categories",
		Name:  "defect_categories",
		Label: "Defect Category",
		Fields: []MasterField{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "code", Kind: KindText},
		},
	},
	{
		Slug:  "defects",
		Name:  "defects",
		Label: "Defect",
		Fields: []MasterField{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "code", Kind: KindText},
			{Name: "category", Kind: KindText},
		},
	},
	{
		Slug:  "product-types",
		Name:  "product_types",
		Label: "Product Type",
		Fields: []MasterField{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "image_url", Kind: KindText},
			{Name: "locations", Kind: KindJSON},
		},
	},
	{
		Slug:  "subcon-factories",
		Name:  "subcon_factories",
		Label: "Sub-Con Factory",
		Fields: []MasterField{
			{Name: "factory", Kind: KindText, Required: true},
			{Name: "active", Kind: KindBool},
			{Name: "lines", Kind: KindJSON},
			{Name: "qcs", Kind: KindJSON},
		},
	},
}

// MasterBySlug returns the master collection served under slug.
func MasterBySlug(slug string) (MasterCollection, bool) {
	for _, m := range MasterCollections {
		if m.Slug == slug {
			return m, true
		}
	}
	return MasterCollection{}, false
}

// DisplayField returns the field used as the record's display name.
func (m MasterCollection) DisplayField() string {
	for _, f := range m.Fields {
		if f.Required {
			return f.Name
		}
	}
	return m.Fields[0].Name
}

func (f MasterField) schemaField() core.Field {
	switch f.Kind {
	case KindNumber:
		return &core.NumberField{Name: f.Name, Required: f.Required}
	case KindBool:
		return &core.BoolField{Name: f.Name}
	case KindJSON:
		return &core.JSONField{Name: f.Name, MaxSize: 1 << 20}
	default:
		return &core.TextField{Name: f.Name, Required: f.Required}
	}
}
