package codec

// Canonical returns v in the shape Decode produces for it. An empty map and
// an empty list share the encoding a:0:{}, so every empty map becomes an
// empty list; int and float32 widen to int64 and float64. Lists and maps
// are copied, v is never modified.
func Canonical(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Canonical(item)
		}
		return out
	case map[string]any:
		if len(x) == 0 {
			return []any{}
		}
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Canonical(item)
		}
		return out
	}
	return v
}
