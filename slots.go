package islet

// NormalizeSlots flattens named slot inputs into name -> markup string.
// Each input is either pre-rendered markup (a string) or a mapping carrying
// the markup under an "html" or "markup" field. Anything else normalizes to
// the empty string so components can index slots without nil checks.
//
// Pure function: the input is never mutated.
func NormalizeSlots(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for name, v := range raw {
		out[name] = slotMarkup(v)
	}
	return out
}

func slotMarkup(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["html"].(string); ok {
			return s
		}
		if s, ok := val["markup"].(string); ok {
			return s
		}
	}
	return ""
}
