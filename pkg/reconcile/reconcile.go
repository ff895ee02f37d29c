// Package reconcile drives one update run: it compares the contributors
// aggregated from a pull request against the CITATION.cff author list,
// appends the authors the file is missing, and reports pre-existing
// duplicates and validation problems. Every per-contributor failure
// degrades to a diagnostic; the run itself only fails on I/O.
package reconcile

import (
	"context"
	"strings"

	"github.com/agentstation/cffauthor/pkg/cff"
	"github.com/agentstation/cffauthor/pkg/contribution"
	"github.com/agentstation/cffauthor/pkg/diag"
	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/identity"
	"github.com/agentstation/cffauthor/pkg/match"
	"github.com/agentstation/cffauthor/pkg/skip"
)

// Enricher turns aggregated identities into candidate author records,
// satisfied by *enrich.Enricher.
type Enricher interface {
	Account(ctx context.Context, username string) (identity.GitHubAccount, error)
	Commit(ctx context.Context, commit identity.CommitIdentity) identity.CommitIdentity
	AuthorFromAccount(account identity.GitHubAccount) (identity.Author, error)
	AuthorFromCommit(commit identity.CommitIdentity) (identity.Author, error)
}

// Reconciler reconciles one pull request's contributors against one
// citation file.
type Reconciler struct {
	doc       *cff.Document
	validator cff.Validator
	enricher  Enricher
	log       *diag.Log
}

// New assembles a Reconciler. The validator may be nil when schema
// validation is unavailable; validation steps are then skipped.
func New(doc *cff.Document, validator cff.Validator, enricher Enricher, log *diag.Log) *Reconciler {
	return &Reconciler{doc: doc, validator: validator, enricher: enricher, log: log}
}

// Result is the outcome of one reconciliation run.
type Result struct {
	// Missing holds the contributors that were not already represented in
	// the author list, in aggregation order. Appended holds the author
	// records actually added for them; a contributor whose record could not
	// be built stays in Missing with no Appended counterpart.
	Missing  []identity.Identity
	Appended []identity.Author

	// AlreadyPresent holds the contributors matched to an existing author
	// record (or to one appended earlier in this run).
	AlreadyPresent []identity.Identity

	// Skipped holds the contributors excluded by skip directives.
	Skipped []identity.Identity

	// Duplicates holds pre-existing duplicate pairs found in the file.
	// They are reported, never merged.
	Duplicates []match.Pair

	// ValidationErrors holds schema-validation output, one line each, from
	// the pre-update and post-update checks.
	ValidationErrors []string

	// Original and Updated are the document before and after the run.
	// Updated is saved to disk even when post-update validation fails.
	Original *cff.Document
	Updated  *cff.Document
}

// Run executes the reconciliation. Contributors are processed in
// first-contribution order so reruns produce identical files. A nil skips
// set disables skip handling.
func (r *Reconciler) Run(ctx context.Context, contributions *contribution.Manager, skips *skip.Set) (*Result, error) {
	result := &Result{Original: r.doc}

	r.validate(ctx, result, r.doc.Path())

	existing, parseErrs := r.doc.Authors()
	for _, err := range parseErrs {
		r.log.Warnf("unparseable author record in %s: %v", r.doc.Path(), err)
	}

	r.sweepDuplicates(result, existing)

	updated := r.doc.Clone()
	accepted := existing
	for _, contributor := range contributions.SortedByFirstContribution() {
		if r.skipped(contributor, skips) {
			result.Skipped = append(result.Skipped, contributor)
			r.log.Infof("%s: authorship skipped by maintainer directive", contributor.Describe())
			continue
		}

		candidate, ok := r.candidate(ctx, contributor)
		if !ok {
			result.Missing = append(result.Missing, contributor)
			continue
		}

		same, compareErrs := match.AnyMatch(candidate, accepted)
		for _, err := range compareErrs {
			r.log.Errorf("%v", err)
		}
		if same {
			result.AlreadyPresent = append(result.AlreadyPresent, contributor)
			r.log.Warnf("%s: already exists in CFF file or already added from another new contribution", candidate.Describe())
			continue
		}

		updated.AppendAuthor(candidate)
		accepted = append(accepted, candidate)
		result.Missing = append(result.Missing, contributor)
		result.Appended = append(result.Appended, candidate)
		r.log.Infof("%s: added to CFF file", candidate.Describe())
	}

	result.Updated = updated
	if err := updated.Save(); err != nil {
		return nil, err
	}
	r.validate(ctx, result, updated.Path())

	return result, nil
}

// validate runs the schema validator and records its output. Validation
// failures never abort the run; whether they fail the PR is the caller's
// policy.
func (r *Reconciler) validate(ctx context.Context, result *Result, path string) {
	if r.validator == nil {
		return
	}
	err := r.validator.Validate(ctx, path)
	if err == nil {
		return
	}

	var procErr *errors.ProcessError
	if errors.As(err, &procErr) && procErr.Output != "" {
		for _, line := range splitLines(procErr.Output) {
			result.ValidationErrors = append(result.ValidationErrors, line)
			r.log.Warnf("[cffconvert] %s", line)
		}
		return
	}
	result.ValidationErrors = append(result.ValidationErrors, err.Error())
	r.log.Warnf("[cffconvert] %v", err)
}

// sweepDuplicates checks the existing author list for internal duplicates.
func (r *Reconciler) sweepDuplicates(result *Result, existing []identity.Author) {
	pairs, errs := match.Duplicates(existing)
	for _, err := range errs {
		r.log.Errorf("%v", err)
	}
	for _, pair := range pairs {
		result.Duplicates = append(result.Duplicates, pair)
		r.log.Warnf("the original CFF file has these duplicate authors: %s and %s",
			pair.First.Describe(), pair.Second.Describe())
	}
}

// skipped evaluates skip directives for one contributor.
func (r *Reconciler) skipped(contributor identity.Identity, skips *skip.Set) bool {
	if skips == nil {
		return false
	}
	switch id := contributor.(type) {
	case identity.GitHubAccount:
		return skips.SkipAccount(id)
	case identity.CommitIdentity:
		return skips.SkipCommitIdentity(id)
	case identity.Author:
		return skips.SkipAuthor(id)
	default:
		return false
	}
}

// candidate enriches a contributor and builds its candidate author record.
// Failures are logged and reported as not-ok; the run continues.
func (r *Reconciler) candidate(ctx context.Context, contributor identity.Identity) (identity.Author, bool) {
	var author identity.Author
	var err error

	switch id := contributor.(type) {
	case identity.GitHubAccount:
		var account identity.GitHubAccount
		account, err = r.enricher.Account(ctx, id.Username)
		if err != nil {
			r.log.Warnf("@%s: unable to fetch user data from GitHub: %v", id.Username, err)
			return identity.Author{}, false
		}
		author, err = r.enricher.AuthorFromAccount(account)
	case identity.CommitIdentity:
		author, err = r.enricher.AuthorFromCommit(r.enricher.Commit(ctx, id))
	case identity.Author:
		author = id
	default:
		r.log.Errorf("%s: unsupported contributor identity", contributor.Describe())
		return identity.Author{}, false
	}

	if err != nil {
		r.log.Warnf("%s: cannot derive an author record: %v", contributor.Describe(), err)
		return identity.Author{}, false
	}
	return author, true
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
