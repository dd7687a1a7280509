package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Titleize turns an attribute name such as "number_of_sets" or "DISTRIB_ID"
// into a display key ("Number Of Sets", "Distrib Id").
func Titleize(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}
