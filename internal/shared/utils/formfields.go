package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseStringList decodes a multipart form value that is expected to be
// a list. Clients send either a JSON array ("[\"a\",\"b\"]") or a
// comma-separated string ("a,b"); both decode to the same result.
// A value that looks like JSON but fails to parse is an error rather
// than being silently treated as a single element.
func ParseStringList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("malformed list value: %w", err)
		}
		return trimAll(items), nil
	}

	return trimAll(strings.Split(raw, ",")), nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
