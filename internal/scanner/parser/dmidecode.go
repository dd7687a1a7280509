package parser

import (
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

const dmiHandleMarker = "Handle "

// seededAliases renames block fields that would collide with the keys every
// record is seeded with. Memory device blocks carry their own "Type: DDR4"
// line, which must not replace the structure type taken from the line after
// the handle.
var seededAliases = map[string]string{
	"Description": "Memory Description",
	"Type":        "Memory Type",
}

// DuplicateField records a key that appeared more than once in a single
// DMI handle block. The later value is the one kept.
type DuplicateField struct {
	Handle string
	Key    string
}

// ParseDMIMemory splits `dmidecode -t memory` output into one record per
// "Handle" block, in table order. Each record starts with "Description" (the
// handle line) and "Type" (the line after it, or "-" at end of input), followed
// by the block's "Key: Value" lines with titleized keys. Lines before the first
// handle are ignored.
func ParseDMIMemory(output string) ([]*document.Map, []DuplicateField) {
	records := make([]*document.Map, 0)
	var dups []DuplicateField

	lines := strings.Split(strings.TrimSpace(output), "\n")
	var current *document.Map
	for i, line := range lines {
		if strings.Contains(line, dmiHandleMarker) {
			if current.Len() > 0 {
				records = append(records, current)
			}
			typ := "-"
			if i+1 < len(lines) {
				typ = lines[i+1]
			}
			current = document.NewMap()
			current.Set("Description", line)
			current.Set("Type", typ)
		}
		if current == nil || !strings.Contains(line, ": ") {
			continue
		}

		k, _, _ := strings.Cut(line, ": ")
		key := Titleize(k)
		if alias, ok := seededAliases[key]; ok {
			key = alias
		}
		if current.Has(key) {
			dups = append(dups, DuplicateField{Handle: current.GetString("Description"), Key: key})
		}
		current.Set(key, lastField(line, ": "))
	}
	if current.Len() > 0 {
		records = append(records, current)
	}

	return records, dups
}
