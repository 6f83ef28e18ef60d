package normalize

import "github.com/tidwall/gjson"

// Unwrap prefers the member named key when doc is an object that has it,
// otherwise doc itself is the collection or entity.
func Unwrap(doc gjson.Result, key string) gjson.Result {
	if doc.IsObject() {
		if v := doc.Get(gjson.Escape(key)); v.Exists() {
			return v
		}
	}
	return doc
}

// Collection returns the elements of doc, or nothing when doc is not an array.
func Collection(doc gjson.Result) []gjson.Result {
	if !doc.IsArray() {
		return nil
	}
	return doc.Array()
}

func field(doc gjson.Result, key string) (gjson.Result, bool) {
	v := doc.Get(gjson.Escape(key))
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

func stringOr(doc gjson.Result, key, def string) string {
	if v, ok := field(doc, key); ok {
		return v.String()
	}
	return def
}

func intOr(doc gjson.Result, key string, def int64) int64 {
	if v, ok := field(doc, key); ok {
		return v.Int()
	}
	return def
}

func boolOr(doc gjson.Result, key string, def bool) bool {
	if v, ok := field(doc, key); ok {
		return v.Bool()
	}
	return def
}

func timestamp(doc gjson.Result, key string) Timestamp {
	return ParseTimestamp(stringOr(doc, key, ""))
}

// firstInt returns the first of keys present on doc.
func firstInt(doc gjson.Result, def int64, keys ...string) int64 {
	for _, key := range keys {
		if v, ok := field(doc, key); ok {
			return v.Int()
		}
	}
	return def
}

// numberText keeps a JSON number as written upstream, so 10.0 stays "10.0".
func numberText(doc gjson.Result, key, def string) string {
	v, ok := field(doc, key)
	switch {
	case !ok:
		return def
	case v.Type == gjson.Number:
		return v.Raw
	default:
		return v.String()
	}
}
