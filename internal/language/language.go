package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ToISO2 converts any recognized ISO 639 code to its two-letter form.
// Returns an empty string for unrecognized input or languages without a
// two-letter code.
func ToISO2(code string) string {
	base, ok := parse(code)
	if !ok {
		return ""
	}
	iso2 := base.String()
	if len(iso2) != 2 {
		return ""
	}
	return iso2
}

// Normalize validates a source language code and returns its canonical
// two-letter form. The catalog keys courses by these codes.
func Normalize(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	iso2 := ToISO2(trimmed)
	if iso2 == "" {
		return "", fmt.Errorf("language code %q is not a recognized two-letter language", trimmed)
	}
	return iso2, nil
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	base, ok := parse(code)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	name := display.English.Languages().Name(base)
	if name == "" {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	return name
}

func parse(code string) (xlanguage.Base, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return xlanguage.Base{}, false
	}
	base, err := xlanguage.ParseBase(code)
	if err != nil {
		return xlanguage.Base{}, false
	}
	if base.String() == "und" {
		return xlanguage.Base{}, false
	}
	return base, true
}
