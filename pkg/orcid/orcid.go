// Package orcid talks to the public ORCID registry: extracting identifiers
// from free text, validating that an identifier exists, searching the
// registry by name and email, and scraping the linked ORCID badge from a
// GitHub profile page. All lookups are memoized in an explicit per-run
// cache so repeated questions about the same contributor cost one call.
package orcid

import (
	"regexp"
	"strings"

	"github.com/agentstation/cffauthor/pkg/constants"
)

var (
	// urlPattern finds an ORCID URL inside free text.
	urlPattern = regexp.MustCompile(`(?i)https://orcid\.org/(\d{4}-\d{4}-\d{4}-\d{3}[\dX])`)

	// idPattern finds a bare ORCID identifier inside free text.
	idPattern = regexp.MustCompile(`\b\d{4}-\d{4}-\d{4}-\d{3}[\dX]\b`)

	// idExactPattern validates a bare identifier end to end.
	idExactPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
)

// URL returns the canonical ORCID URL for a bare identifier.
func URL(id string) string {
	return constants.ORCIDURL + "/" + id
}

// ValidFormat reports whether id is a well-formed bare ORCID identifier.
func ValidFormat(id string) bool {
	return idExactPattern.MatchString(id)
}

// ExtractURL finds the first ORCID URL in text and returns it in canonical
// lowercase form, or "" when none is present.
func ExtractURL(text string) string {
	if text == "" {
		return ""
	}
	m := urlPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return URL(strings.ToUpper(m[1]))
}

// ExtractID finds the first bare ORCID identifier in text, looking first
// for a full URL and then for a naked identifier. Returns "" when none is
// present.
func ExtractID(text string) string {
	if text == "" {
		return ""
	}
	if m := urlPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := idPattern.FindString(text); m != "" {
		return strings.ToUpper(m)
	}
	return ""
}
