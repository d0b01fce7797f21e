package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeFileName strips any path components from an uploaded file name
// and replaces characters outside [a-zA-Z0-9._-] so the name is safe to
// create inside a staging directory.
func SanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == "/" || base == "" {
		base = "upload.pdf"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, base)
}
