package utils

import "strings"

// FirstNonEmpty returns the first argument that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}

func NormalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
