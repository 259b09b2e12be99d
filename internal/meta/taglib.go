package meta

// taglibTags wraps a taglib result map with lookup helpers.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or "".
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
