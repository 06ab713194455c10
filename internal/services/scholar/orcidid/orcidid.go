// Package orcidid validates and formats ORCID identifiers.
package orcidid

import (
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// IsValid reports whether value is a hyphenated ORCID iD such as
// 0000-0002-1825-0097. The final character may be the X checksum.
func IsValid(value string) bool {
	return pattern.MatchString(value)
}

// Format strips hyphens and regroups a 16 character identifier into four
// hyphenated blocks. Other inputs are returned unchanged.
func Format(value string) string {
	cleaned := strings.ReplaceAll(value, "-", "")
	if len(cleaned) != 16 {
		return value
	}
	return cleaned[0:4] + "-" + cleaned[4:8] + "-" + cleaned[8:12] + "-" + cleaned[12:16]
}
