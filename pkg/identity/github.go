package identity

import (
	"regexp"
	"strings"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/errors"
)

// usernamePattern matches the GitHub username grammar: alphanumeric runs
// separated by single hyphens, no leading or trailing hyphen. Length is
// checked separately. GitHub usernames are ASCII only.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)

// ValidUsername reports whether s satisfies the GitHub username grammar.
func ValidUsername(s string) bool {
	if s == "" || len(s) > constants.GitHubUsernameMaxLength {
		return false
	}
	return usernamePattern.MatchString(s)
}

// ProfileURL returns the canonical GitHub profile URL for a username.
func ProfileURL(username string) string {
	return constants.GitHubURL + "/" + username
}

// IsProfileURL reports whether url is syntactically a GitHub user profile URL.
func IsProfileURL(url string) bool {
	_, ok := ParseUsernameFromProfileURL(url)
	return ok
}

// ParseUsernameFromProfileURL extracts the username from a GitHub user
// profile URL, reporting whether url had the expected shape.
func ParseUsernameFromProfileURL(url string) (string, bool) {
	const prefix = constants.GitHubURL + "/"
	trimmed := strings.TrimSpace(url)
	if len(trimmed) <= len(prefix) || !strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return "", false
	}
	username := trimmed[len(prefix):]
	if !ValidUsername(username) {
		return "", false
	}
	return username, true
}

// GitHubAccount is the identity of a contributor known by GitHub username.
// Profile and ORCID fields are populated once, at construction, by the
// enrichment layer; the unique key is the profile URL.
type GitHubAccount struct {
	Username   string
	profileURL string

	// Profile fields fetched from the GitHub users API.
	Name         string
	Email        string
	Bio          string
	Blog         string
	Organization bool

	// ORCID evidence discovered during enrichment.
	ORCID     string
	ORCIDName string
}

// GitHubAccountOption configures a GitHubAccount during construction.
type GitHubAccountOption func(*GitHubAccount)

// WithProfile sets the profile fields fetched from the GitHub users API.
func WithProfile(name, email, bio, blog string, organization bool) GitHubAccountOption {
	return func(a *GitHubAccount) {
		a.Name = strings.TrimSpace(name)
		a.Email = strings.TrimSpace(email)
		a.Bio = strings.TrimSpace(bio)
		a.Blog = strings.TrimSpace(blog)
		a.Organization = organization
	}
}

// WithORCID sets the ORCID evidence discovered during enrichment.
func WithORCID(orcid, orcidName string) GitHubAccountOption {
	return func(a *GitHubAccount) {
		a.ORCID = strings.TrimSpace(orcid)
		a.ORCIDName = strings.TrimSpace(orcidName)
	}
}

// NewGitHubAccount validates the username grammar and constructs the account.
func NewGitHubAccount(username string, opts ...GitHubAccountOption) (GitHubAccount, error) {
	username = strings.TrimSpace(username)
	if !ValidUsername(username) {
		return GitHubAccount{}, errors.NewConstructionError("github account", username, "invalid GitHub username")
	}

	a := GitHubAccount{
		Username:   username,
		profileURL: ProfileURL(username),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a, nil
}

// Key returns the canonical profile URL.
func (a GitHubAccount) Key() string {
	return a.profileURL
}

// Describe returns a human-readable identifier for logs.
func (a GitHubAccount) Describe() string {
	return "@" + a.Username + " (GitHub)"
}
