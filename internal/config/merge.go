package config

import (
	"sort"
	"strings"
)

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Overridden returns the fields whose value did not come from the defaults,
// sorted by name.
func (cws *ConfigWithSources) Overridden() []string {
	var fields []string
	for field, source := range cws.Sources {
		if source != SourceDefault {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}
