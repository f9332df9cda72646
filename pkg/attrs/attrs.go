// Package attrs reads values back out of slog-style key-value slices.
package attrs

// Lookup returns the value paired with key in a [key1, value1, key2, value2, ...]
// slice. Later pairs win over earlier ones.
func Lookup(attrs []any, key string) (any, bool) {
	var (
		found any
		ok    bool
	)
	for i := 0; i < len(attrs)-1; i += 2 {
		if k, isString := attrs[i].(string); isString && k == key {
			found, ok = attrs[i+1], true
		}
	}
	return found, ok
}

// ExtractString returns the string value paired with key, or "" when the key
// is missing or not a string. Values implementing fmt.Stringer are rendered.
func ExtractString(attrs []any, key string) string {
	v, ok := Lookup(attrs, key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case interface{ String() string }:
		return s.String()
	}
	return ""
}
