package company

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title upper-cases the first letter of every word and lower-cases the rest.
func Title(s string) string {
	// A Caser keeps state between calls, so one is built per call.
	return cases.Title(language.Und).String(s)
}
