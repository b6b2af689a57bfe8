package helpers

import (
	"encoding/json"
	"strings"
)

// URL joins path onto the configured base path.
func URL(base, path string) string {
	base = normalizeRoute(base)
	path = normalizeRoute(path)
	if base == "/" {
		return path
	}
	if path == "/" {
		return base + "/"
	}
	return base + path
}

// CSRFHeaders renders the hx-headers attribute value carrying the token.
func CSRFHeaders(header, token string) string {
	if strings.TrimSpace(header) == "" {
		header = "X-CSRF-Token"
	}
	encoded, err := json.Marshal(map[string]string{header: token})
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func normalizeRoute(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
