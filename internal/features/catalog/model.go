package catalog

type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
)

// FieldMeta describes a single reportable field of a data source.
type FieldMeta struct {
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Type         FieldType `json:"type"`
	Aggregatable bool      `json:"aggregatable"`
	Groupable    bool      `json:"groupable"`
}

// DataSourceMeta describes one data source exposed to the report builder.
// The catalog is static: it never changes at runtime and is the single
// source of truth for which metric/dimension/filter selections are valid.
type DataSourceMeta struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	Collection string      `json:"collection"` // Backing Mongo collection
	External   bool        `json:"external"`   // Served by the SQL executor instead of Mongo
	Fields     []FieldMeta `json:"fields"`
}

// Field returns the field with the given key, if present.
func (ds DataSourceMeta) Field(key string) (FieldMeta, bool) {
	for _, f := range ds.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// FirstAggregatable returns the first aggregatable field of the source.
func (ds DataSourceMeta) FirstAggregatable() (FieldMeta, bool) {
	for _, f := range ds.Fields {
		if f.Aggregatable {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// FirstGroupable returns the first groupable field of the source.
func (ds DataSourceMeta) FirstGroupable() (FieldMeta, bool) {
	for _, f := range ds.Fields {
		if f.Groupable {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// DateFields returns the date-typed fields of the source, in catalog order.
func (ds DataSourceMeta) DateFields() []FieldMeta {
	var out []FieldMeta
	for _, f := range ds.Fields {
		if f.Type == FieldTypeDate {
			out = append(out, f)
		}
	}
	return out
}
