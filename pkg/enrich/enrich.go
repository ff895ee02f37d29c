// Package enrich populates ORCID evidence on contributor identities and
// turns enriched identities into candidate citation author records.
//
// ORCID discovery tries signal sources in strict priority order and stops
// at the first hit: the profile badge, the blog field, the bio field, and
// finally a registry search. Platform accounts search by name and email;
// commit identities search by email only, because commit display names
// vary too much to be a safe query signal. Every failure downgrades to
// "no additional evidence", never to a run failure.
package enrich

import (
	"context"

	"github.com/agentstation/cffauthor/pkg/diag"
	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/identity"
	"github.com/agentstation/cffauthor/pkg/orcid"
)

// Registry is the ORCID lookup surface the enricher needs, satisfied by
// *orcid.Client.
type Registry interface {
	ScrapeGitHubProfile(ctx context.Context, username string) string
	Search(ctx context.Context, name, email string) []string
	Validate(ctx context.Context, id string) bool
	Names(ctx context.Context, id string) (orcid.Names, error)
}

// Profile is the subset of a GitHub user profile the enricher reads.
type Profile struct {
	Name         string
	Email        string
	Bio          string
	Blog         string
	Organization bool
}

// ProfileSource fetches GitHub user profiles.
type ProfileSource interface {
	Profile(ctx context.Context, username string) (Profile, error)
}

// Enricher builds enriched identities and candidate author records.
type Enricher struct {
	registry Registry
	profiles ProfileSource
	log      *diag.Log
}

// New creates an Enricher that records its findings on log.
func New(registry Registry, profiles ProfileSource, log *diag.Log) *Enricher {
	return &Enricher{registry: registry, profiles: profiles, log: log}
}

// Account fetches the GitHub profile for username and attaches ORCID
// evidence. A failed profile fetch is fatal to this one contributor; the
// caller records it and moves on.
func (e *Enricher) Account(ctx context.Context, username string) (identity.GitHubAccount, error) {
	profile, err := e.profiles.Profile(ctx, username)
	if err != nil {
		return identity.GitHubAccount{}, err
	}

	opts := []identity.GitHubAccountOption{
		identity.WithProfile(profile.Name, profile.Email, profile.Bio, profile.Blog, profile.Organization),
	}

	if !profile.Organization {
		found := e.discoverAccountORCID(ctx, username, profile)
		if verified, name := e.verify(ctx, "@"+username, found, profile.Name); verified != "" {
			opts = append(opts, identity.WithORCID(verified, name))
		}
	}

	return identity.NewGitHubAccount(username, opts...)
}

// discoverAccountORCID runs the badge, blog, bio, and search signal
// sources in priority order.
func (e *Enricher) discoverAccountORCID(ctx context.Context, username string, profile Profile) string {
	if found := e.registry.ScrapeGitHubProfile(ctx, username); found != "" {
		return found
	}
	if found := orcid.ExtractURL(profile.Blog); found != "" {
		return found
	}
	if found := orcid.ExtractURL(profile.Bio); found != "" {
		return found
	}
	name := profile.Name
	if name == "" {
		name = username
	}
	if matches := e.registry.Search(ctx, name, profile.Email); len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// Commit attaches ORCID evidence to a commit identity via an email-only
// registry search.
func (e *Enricher) Commit(ctx context.Context, commit identity.CommitIdentity) identity.CommitIdentity {
	if commit.Email == "" {
		e.log.Infof("%s: no ORCID found", commit.Describe())
		return commit
	}

	var found string
	if matches := e.registry.Search(ctx, "", commit.Email); len(matches) > 0 {
		found = matches[0]
	}
	verified, _ := e.verify(ctx, commit.Describe(), found, commit.Name)
	if verified == "" {
		return commit
	}
	enriched, err := identity.NewCommitIdentity(commit.Name, commit.Email, identity.WithCommitORCID(verified))
	if err != nil {
		return commit
	}
	return enriched
}

// verify validates a discovered ORCID and fetches its record names. It
// returns "" when nothing usable was found, logging the outcome: a
// candidate that fails validation is a warning, no candidate at all is
// informational.
func (e *Enricher) verify(ctx context.Context, who, found, knownName string) (string, string) {
	if found == "" {
		e.log.Infof("%s: no ORCID found", who)
		return "", ""
	}
	if !e.registry.Validate(ctx, found) {
		e.log.Warnf("%s: ORCID `%s` is invalid or unreachable", who, found)
		return "", ""
	}

	names, err := e.registry.Names(ctx, found)
	if err != nil {
		return found, ""
	}
	preferred := names.Preferred()
	if preferred == "" {
		return found, ""
	}
	if knownName == "" {
		e.log.Infof("%s: added name `%s` from ORCID `%s`", who, preferred, found)
	} else if !names.Knows(knownName) {
		e.log.Warnf("%s: ORCID name `%s` does not match profile name `%s`, keeping profile name", who, preferred, knownName)
	}
	return found, preferred
}

// AuthorFromAccount renders an enriched GitHub account as a candidate
// citation author record. Organizations become entity records. Persons
// with a single-word display name also become entity records so that
// later comparisons stay deterministic, with a warning.
func (e *Enricher) AuthorFromAccount(account identity.GitHubAccount) (identity.Author, error) {
	opts := []identity.AuthorOption{identity.WithAlias(account.Key())}
	if account.Email != "" {
		opts = append(opts, identity.WithEmail(account.Email))
	}

	if account.Organization {
		name := account.Name
		if name == "" {
			name = account.Username
		}
		return identity.NewEntityAuthor(name, opts...)
	}

	if account.ORCID != "" {
		opts = append(opts, identity.WithAuthorORCID(account.ORCID))
	}

	fullName := account.Name
	if fullName == "" {
		fullName = account.Username
	}
	given, family := splitFullName(fullName)
	if family == "" {
		e.log.Warnf("@%s: only one name part found, treated as entity for deduplication consistency", account.Username)
		return identity.NewEntityAuthor(fullName, opts...)
	}
	return identity.NewPersonAuthor(given, family, opts...)
}

// AuthorFromCommit renders an enriched commit identity as a candidate
// citation author record, with the same single-word-name entity fallback.
func (e *Enricher) AuthorFromCommit(commit identity.CommitIdentity) (identity.Author, error) {
	var opts []identity.AuthorOption
	if commit.Email != "" {
		opts = append(opts, identity.WithEmail(commit.Email))
	}

	if commit.Name == "" {
		return identity.Author{}, errors.NewConstructionError("cff author", commit.Key(), "commit identity has no name to derive an author from")
	}

	given, family := splitFullName(commit.Name)
	if family == "" {
		e.log.Warnf("`%s`: only one name part found, treated as entity for deduplication consistency", commit.Name)
		return identity.NewEntityAuthor(commit.Name, opts...)
	}
	if commit.ORCID != "" {
		opts = append(opts, identity.WithAuthorORCID(commit.ORCID))
	}
	return identity.NewPersonAuthor(given, family, opts...)
}

// splitFullName splits a display name into given and family parts on the
// first space.
func splitFullName(name string) (given, family string) {
	for i, r := range name {
		if r == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}
