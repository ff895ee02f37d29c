// Package constants defines shared constants used throughout the cffauthor system.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the GitHub API
	DefaultHTTPTimeout = 30 * time.Second

	// RegistryLookupTimeout bounds a single ORCID registry lookup so that a slow
	// registry cannot stall the whole run
	RegistryLookupTimeout = 10 * time.Second

	// RegistryValidateTimeout bounds the ORCID existence check
	RegistryValidateTimeout = 5 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ValidatorTimeout bounds a single cffconvert invocation
	ValidatorTimeout = 2 * time.Minute
)

// External service endpoints
const (
	// GitHubAPIURL is the base URL of the GitHub REST API
	GitHubAPIURL = "https://api.github.com"

	// GitHubGraphQLURL is the GitHub GraphQL endpoint
	GitHubGraphQLURL = "https://api.github.com/graphql"

	// GitHubURL is the base URL of github.com, used for profile URLs and scraping
	GitHubURL = "https://github.com"

	// ORCIDPublicAPIURL is the base URL of the public ORCID registry API
	ORCIDPublicAPIURL = "https://pub.orcid.org/v3.0"

	// ORCIDURL is the base URL of orcid.org, used to build canonical ORCID URLs
	ORCIDURL = "https://orcid.org"
)

// HTTP client identification
const (
	// UserAgent identifies cffauthor to external services
	UserAgent = "cffauthor"
)

// File and output defaults
const (
	// DefaultCFFPath is the conventional location of the citation file
	DefaultCFFPath = "CITATION.cff"

	// DefaultBotBlacklist is the default comma-separated list of bot accounts
	// excluded from authorship consideration
	DefaultBotBlacklist = "github-actions[bot]"

	// FilePermissions is the default permission for written files
	FilePermissions = 0o644
)

// GitHub limits
const (
	// MaxLinkedIssues caps the number of closing issue references fetched per PR
	MaxLinkedIssues = 50

	// GitHubUsernameMaxLength is the maximum length of a GitHub username
	GitHubUsernameMaxLength = 39

	// ShortSHALength is the number of SHA characters shown in comments
	ShortSHALength = 7
)
