// Package match decides whether two CITATION.cff author records refer to the
// same real-world person or organization. The decision procedure is a
// priority-ordered, short-circuiting rule cascade over identity signals, not
// a weighted or fuzzy score: the first rule with a usable value on both
// sides decides the outcome.
package match

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/identity"
)

// folder performs Unicode caseless folding for all comparisons.
var folder = cases.Fold()

// fold trims surrounding whitespace and case-folds a signal value.
func fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// Same reports whether a and b refer to the same author.
//
// The cascade, in order:
//
//  1. ORCID: both present decides (equal or not). Two records with
//     different ORCIDs are different people, whatever else agrees.
//  2. Alias, only when both aliases are syntactically GitHub profile URLs:
//     both present decides. Two accounts are two identities even when the
//     display names collide.
//  3. Email: equal emails match. Differing emails fall through — the same
//     person commits under many addresses, so email inequality is not a
//     mismatch signal.
//  4. Full name: requires matching author types; equal names match unless
//     both sides carry aliases that differ (two distinct people can share a
//     display name).
//
// A value present on only one side is never a mismatch signal; the rule is
// skipped. If the cascade reaches the name rule and either side has no
// derivable full name, the records are incomparable and an
// *errors.IncomparableError is returned.
func Same(a, b identity.Author) (bool, error) {
	aORCID, bORCID := fold(a.ORCID), fold(b.ORCID)
	if aORCID != "" && bORCID != "" {
		return aORCID == bORCID, nil
	}

	if identity.IsProfileURL(a.Alias) && identity.IsProfileURL(b.Alias) {
		return fold(a.Alias) == fold(b.Alias), nil
	}

	aEmail, bEmail := fold(a.Email), fold(b.Email)
	if aEmail != "" && aEmail == bEmail {
		return true, nil
	}

	aName, bName := fold(a.FullName()), fold(b.FullName())
	if aName == "" || bName == "" {
		return false, &errors.IncomparableError{A: a.Key(), B: b.Key()}
	}

	// An organization and a person never collide on name alone.
	if a.Type != b.Type {
		return false, nil
	}
	if aName != bName {
		return false, nil
	}

	// Disqualifier: equal names but conflicting aliases. Reached when at
	// least one alias is not a GitHub profile URL, so rule 2 was skipped.
	aAlias, bAlias := fold(a.Alias), fold(b.Alias)
	if aAlias != "" && bAlias != "" && aAlias != bAlias {
		return false, nil
	}

	return true, nil
}

// Pair records one detected duplicate: First appears earlier in the author
// list than Second, so Second is the entry flagged as the duplicate.
type Pair struct {
	First  identity.Author
	Second identity.Author
}

// Duplicates runs the pairwise self-consistency sweep over an existing
// author list. Matches are reported, never merged; repairing the file is
// the maintainer's call. Incomparable pairs are collected as errors and do
// not abort the sweep.
func Duplicates(authors []identity.Author) ([]Pair, []error) {
	var pairs []Pair
	var errs []error
	for i := range authors {
		for j := i + 1; j < len(authors); j++ {
			same, err := Same(authors[i], authors[j])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if same {
				pairs = append(pairs, Pair{First: authors[i], Second: authors[j]})
			}
		}
	}
	return pairs, errs
}

// AnyMatch reports whether candidate matches at least one author in list.
// Incomparable comparisons are skipped and returned for diagnostics.
func AnyMatch(candidate identity.Author, list []identity.Author) (bool, []error) {
	var errs []error
	for _, existing := range list {
		same, err := Same(candidate, existing)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if same {
			return true, errs
		}
	}
	return false, errs
}
