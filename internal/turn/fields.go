package turn

import (
	"strconv"
	"strings"

	"storyloom/internal/llm"
	"storyloom/internal/store"
)

// ValidateUpdates splits proposed field updates into those accepted for
// persistence and those dropped. An update is accepted only when its field
// name exactly matches a defined player field for the world and its value
// coerces to the field's declared type; everything else is dropped, never
// coerced into new keys. The field definitions are the only authority on
// what the analyzer may write. Accepted updates carry the coerced value, so
// a number field always persists a JSON number even when the model spelled
// it as a string.
func ValidateUpdates(proposed []llm.ProposedUpdate, defs []store.PlayerField) (valid, dropped []llm.ProposedUpdate) {
	known := make(map[string]store.PlayerField, len(defs))
	for _, def := range defs {
		known[def.Name] = def
	}

	for _, update := range proposed {
		def, ok := known[update.FieldName]
		if !ok {
			dropped = append(dropped, update)
			continue
		}
		value, ok := coerceValue(update.NewValue, def.Type)
		if !ok {
			dropped = append(dropped, update)
			continue
		}
		update.NewValue = value
		valid = append(valid, update)
	}
	return valid, dropped
}

// coerceValue normalizes a proposed value to the field's declared type.
// Models routinely return numbers as strings: a number field accepts any
// numeric spelling and yields float64, a text field accepts any scalar and
// yields its text rendering. Values that cannot be coerced reject the
// update.
func coerceValue(v any, fieldType string) (any, bool) {
	switch fieldType {
	case "number":
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, false
			}
			return parsed, true
		}
		return nil, false
	case "text":
		switch s := v.(type) {
		case string:
			return s, true
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(s), true
		}
		return nil, false
	default:
		return v, true
	}
}

// ApplyUpdates merges validated updates into the current dynamic fields,
// last write winning per key, and returns a fresh map. The input map is
// never mutated. Existing keys absent from the updates survive untouched.
func ApplyUpdates(current map[string]any, updates []llm.ProposedUpdate) map[string]any {
	merged := make(map[string]any, len(current)+len(updates))
	for k, v := range current {
		merged[k] = v
	}
	for _, update := range updates {
		merged[update.FieldName] = update.NewValue
	}
	return merged
}
