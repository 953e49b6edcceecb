package nutrition

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanDisplayName tidies a food name for presentation. Barcode databases
// frequently return ALL-CAPS or lowercase product names; single-case names
// are re-cased to title form, mixed-case names are left alone apart from
// whitespace collapsing.
func CleanDisplayName(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	if collapsed == "" {
		return "Unknown Food"
	}

	hasUpper := false
	hasLower := false
	for _, r := range collapsed {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return collapsed
	}
	return cases.Title(language.Und).String(strings.ToLower(collapsed))
}
