// Package attrs reads values back out of slog-style attribute lists.
package attrs

import "log/slog"

// ExtractString returns the string value for key from a slog argument list.
// Both alternating key/value pairs and slog.Attr entries are understood.
// Returns "" if the key is absent or its value is not a string.
func ExtractString(args []any, key string) string {
	for i := 0; i < len(args); i++ {
		switch k := args[i].(type) {
		case slog.Attr:
			if k.Key == key && k.Value.Kind() == slog.KindString {
				return k.Value.String()
			}
		case string:
			if i+1 >= len(args) {
				return ""
			}
			if k == key {
				v, _ := args[i+1].(string)
				return v
			}
			i++
		}
	}
	return ""
}
