// Package utils provides JSON Pointer helpers shared by the tree and
// validation packages.
package utils

import (
	"strings"
)

// SplitJSONPointer splits a JSON Pointer (RFC 6901) into unescaped reference
// tokens. A leading "#" fragment marker is accepted, so "#/foo/bar~10" yields
// ["foo", "bar/0"]. The empty pointer and "#" both address the whole
// document and yield nil.
func SplitJSONPointer(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "#")
	if ptr == "" {
		return nil
	}
	ptr = strings.TrimPrefix(ptr, "/")

	parts := strings.Split(ptr, "/")
	for i, part := range parts {
		// ~1 must be replaced before ~0 so "~01" decodes to "~1".
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

// EscapeJSONPointerToken escapes a single reference token for use in a JSON
// Pointer.
func EscapeJSONPointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// LastJSONPointerToken returns the final unescaped token of ptr, or "" when
// ptr addresses the whole document.
func LastJSONPointerToken(ptr string) string {
	parts := SplitJSONPointer(ptr)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
