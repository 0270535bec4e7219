package quality

// Record exposes named fields of a source record. Implementations report
// ok=false for fields the record does not carry.
type Record interface {
	Field(name string) (value any, ok bool)
}

// MapRecord adapts a decoded JSON object to Record.
type MapRecord map[string]any

// Field implements Record.
func (r MapRecord) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// RecordFunc adapts a plain function to Record.
type RecordFunc func(name string) (any, bool)

// Field implements Record.
func (f RecordFunc) Field(name string) (any, bool) {
	return f(name)
}

// MapRecords wraps a slice of decoded objects.
func MapRecords(rows []map[string]any) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = MapRecord(row)
	}
	return out
}

// isMissing reports whether a field value counts against completeness:
// absent, nil, or the empty string.
func isMissing(v any, ok bool) bool {
	if !ok || v == nil {
		return true
	}
	if s, isString := v.(string); isString && s == "" {
		return true
	}
	return false
}
