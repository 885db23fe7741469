package domain

import "time"

// RawJobRecord is one unparsed JobPosting structured-data block plus where
// and when it was found. Ephemeral: it lives only between extraction and
// normalization.
type RawJobRecord struct {
	Fields       RawFields
	SourceURL    string
	DiscoveredAt time.Time
}

// RawFields is a schema-tolerant view over a decoded JSON-LD object.
// Accessors report presence with an ok flag instead of failing; callers
// decide field by field how to coerce.
type RawFields map[string]any

// Str returns a string field. Numeric values are not coerced here.
func (f RawFields) Str(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Num returns a numeric field. JSON numbers decode as float64; numeric
// strings are left to the caller.
func (f RawFields) Num(key string) (float64, bool) {
	v, ok := f[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Obj returns a nested object field.
func (f RawFields) Obj(key string) (RawFields, bool) {
	v, ok := f[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return RawFields(m), true
}

// List returns an array field.
func (f RawFields) List(key string) ([]any, bool) {
	v, ok := f[key]
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

// FirstObj returns the field as an object, unwrapping a one-or-many array
// to its first object element. JSON-LD producers use both shapes freely.
func (f RawFields) FirstObj(key string) (RawFields, bool) {
	if o, ok := f.Obj(key); ok {
		return o, true
	}
	l, ok := f.List(key)
	if !ok {
		return nil, false
	}
	for _, v := range l {
		if m, ok := v.(map[string]any); ok {
			return RawFields(m), true
		}
	}
	return nil, false
}
