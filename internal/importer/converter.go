package importer

import "strings"

// FileName converts a set id to a stable lowercase file name stem.
//
// Postcondition: result contains only [a-z0-9_-] and is idempotent
// (FileName(FileName(s)) == FileName(s)).
func FileName(setID string) string {
	s := strings.ToLower(strings.TrimSpace(setID))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '/':
			b.WriteRune('_')
		}
	}
	return b.String()
}
