package docstore

// Match reports whether payload satisfies every equality term in filter.
// Backends that round-trip payloads through JSON lose integer types, so
// numeric values are compared by magnitude rather than by Go type.
func Match(payload Payload, filter Filter) bool {
	for field, want := range filter {
		got, ok := payload[field]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !equalValue(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Clone deep-copies a payload so callers and backends never alias each
// other's nested maps and slices.
func Clone(payload Payload) Payload {
	if payload == nil {
		return nil
	}
	return cloneValue(payload).(Payload)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Project trims payload to the listed top-level fields, always keeping the
// primary key. A nil projection returns payload unchanged.
func Project(payload Payload, projection Projection) Payload {
	if projection == nil {
		return payload
	}
	out := make(Payload, len(projection)+1)
	if id, ok := payload[FieldID]; ok {
		out[FieldID] = id
	}
	for _, field := range projection {
		if v, ok := payload[field]; ok {
			out[field] = v
		}
	}
	return out
}
