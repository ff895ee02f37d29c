// Package skip parses authorship skip directives out of pull request
// comments. Maintainers write lines like "skip-authorship-by-email
// bot@example.org" to keep a contributor out of the citation file, and
// "unskip-..." to reverse an earlier directive. Directives are applied in
// comment order, so the chronologically last one for a value wins.
package skip

import (
	"sort"
	"strings"
	"time"

	"github.com/agentstation/cffauthor/pkg/identity"
)

// Field names the identity signal a directive targets.
type Field string

// The four skippable signals.
const (
	FieldORCID    Field = "orcid"
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldUsername Field = "github-username"
)

// Comment is one pull request comment, in the shape Parse needs.
type Comment struct {
	Body      string
	CreatedAt time.Time
}

// directives maps line prefixes to their effect. Unskip prefixes come
// first so a skip prefix never shadows them.
var directives = []struct {
	prefix string
	field  Field
	skip   bool
}{
	{"unskip-authorship-by-orcid", FieldORCID, false},
	{"skip-authorship-by-orcid", FieldORCID, true},
	{"unskip-authorship-by-name", FieldName, false},
	{"skip-authorship-by-name", FieldName, true},
	{"unskip-authorship-by-email", FieldEmail, false},
	{"skip-authorship-by-email", FieldEmail, true},
	{"unskip-authorship-by-github-username", FieldUsername, false},
	{"skip-authorship-by-github-username", FieldUsername, true},
}

// Set holds the resolved skip state: for each field, the values whose
// latest directive was a skip.
type Set struct {
	values map[Field]map[string]bool
}

// Parse scans comments (oldest first, re-sorted defensively) and returns
// the resolved skip state.
func Parse(comments []Comment) *Set {
	ordered := make([]Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	state := map[Field]map[string]bool{
		FieldORCID:    {},
		FieldName:     {},
		FieldEmail:    {},
		FieldUsername: {},
	}
	for _, comment := range ordered {
		for _, line := range strings.Split(comment.Body, "\n") {
			line = strings.TrimSpace(line)
			for _, d := range directives {
				if !strings.HasPrefix(line, d.prefix) {
					continue
				}
				value := strings.TrimSpace(line[len(d.prefix):])
				if value != "" {
					state[d.field][value] = d.skip
				}
				break
			}
		}
	}

	set := &Set{values: make(map[Field]map[string]bool)}
	for field, byValue := range state {
		set.values[field] = make(map[string]bool)
		for value, skipped := range byValue {
			if skipped {
				set.values[field][value] = true
			}
		}
	}
	return set
}

// Contains reports whether value is skipped under field.
func (s *Set) Contains(field Field, value string) bool {
	if s == nil || value == "" {
		return false
	}
	return s.values[field][value]
}

// Empty reports whether no skip is in effect.
func (s *Set) Empty() bool {
	if s == nil {
		return true
	}
	for _, byValue := range s.values {
		if len(byValue) > 0 {
			return false
		}
	}
	return true
}

// SkipAccount reports whether a GitHub account is skipped.
func (s *Set) SkipAccount(account identity.GitHubAccount) bool {
	return s.Contains(FieldUsername, account.Username)
}

// SkipCommitIdentity reports whether a commit identity is skipped, by
// email or by name.
func (s *Set) SkipCommitIdentity(commit identity.CommitIdentity) bool {
	return s.Contains(FieldEmail, commit.Email) || s.Contains(FieldName, commit.Name)
}

// SkipAuthor reports whether a CFF author record is skipped: by ORCID, by
// the GitHub username behind its alias, by email, or by full name.
func (s *Set) SkipAuthor(author identity.Author) bool {
	if s.Contains(FieldORCID, author.ORCID) {
		return true
	}
	if username, ok := identity.ParseUsernameFromProfileURL(author.Alias); ok &&
		s.Contains(FieldUsername, username) {
		return true
	}
	if s.Contains(FieldEmail, author.Email) {
		return true
	}
	return s.Contains(FieldName, author.FullName())
}
