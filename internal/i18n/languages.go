package i18n

import "strings"

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"ru": "Russian",
}

// IsSupported reports whether replies can be produced in code.
func IsSupported(code string) bool {
	_, ok := languageNames[strings.ToLower(code)]
	return ok
}
