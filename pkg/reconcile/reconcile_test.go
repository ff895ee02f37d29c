package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cffauthor/pkg/cff"
	"github.com/agentstation/cffauthor/pkg/contribution"
	"github.com/agentstation/cffauthor/pkg/diag"
	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/identity"
	"github.com/agentstation/cffauthor/pkg/logging"
	"github.com/agentstation/cffauthor/pkg/skip"
)

// fakeEnricher resolves accounts from a fixed table and derives authors
// without touching the network.
type fakeEnricher struct {
	accounts map[string]identity.GitHubAccount
}

func (f *fakeEnricher) Account(_ context.Context, username string) (identity.GitHubAccount, error) {
	account, ok := f.accounts[username]
	if !ok {
		return identity.GitHubAccount{}, &errors.APIError{Service: "github", StatusCode: 404, Message: "user not found"}
	}
	return account, nil
}

func (f *fakeEnricher) Commit(_ context.Context, commit identity.CommitIdentity) identity.CommitIdentity {
	return commit
}

func (f *fakeEnricher) AuthorFromAccount(account identity.GitHubAccount) (identity.Author, error) {
	name := account.Name
	if name == "" {
		name = account.Username
	}
	given, family := splitName(name)
	opts := []identity.AuthorOption{identity.WithAlias(account.Key())}
	if account.Email != "" {
		opts = append(opts, identity.WithEmail(account.Email))
	}
	if family == "" {
		return identity.NewEntityAuthor(name, opts...)
	}
	return identity.NewPersonAuthor(given, family, opts...)
}

func (f *fakeEnricher) AuthorFromCommit(commit identity.CommitIdentity) (identity.Author, error) {
	given, family := splitName(commit.Name)
	var opts []identity.AuthorOption
	if commit.Email != "" {
		opts = append(opts, identity.WithEmail(commit.Email))
	}
	if family == "" {
		return identity.NewEntityAuthor(commit.Name, opts...)
	}
	return identity.NewPersonAuthor(given, family, opts...)
}

func splitName(name string) (string, string) {
	for i, r := range name {
		if r == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}

// lineValidator fails with fixed output lines, or passes when empty.
type lineValidator struct {
	lines string
	calls int
}

func (v *lineValidator) Validate(context.Context, string) error {
	v.calls++
	if v.lines == "" {
		return nil
	}
	return &errors.ProcessError{Operation: "cff validation", Command: "cffconvert", Output: v.lines, ExitCode: 1}
}

func writeCFF(t *testing.T, content string) *cff.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CITATION.cff")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	doc, err := cff.Load(path)
	require.NoError(t, err)
	return doc
}

const baseCFF = `cff-version: 1.2.0
title: example
authors:
  - given-names: Ada
    family-names: Lovelace
    email: ada@example.org
`

func account(t *testing.T, username, name, email string) identity.GitHubAccount {
	t.Helper()
	a, err := identity.NewGitHubAccount(username, identity.WithProfile(name, email, "", "", false))
	require.NoError(t, err)
	return a
}

func commitID(t *testing.T, name, email string) identity.CommitIdentity {
	t.Helper()
	c, err := identity.NewCommitIdentity(name, email)
	require.NoError(t, err)
	return c
}

func contributions(t *testing.T, ids ...identity.Identity) *contribution.Manager {
	t.Helper()
	m := contribution.NewManager()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range ids {
		m.Add(id, contribution.New(contribution.KindCommit, "c-"+id.Key(), base.Add(time.Duration(i)*time.Minute)))
	}
	return m
}

func newRun(t *testing.T, doc *cff.Document, validator cff.Validator, accounts map[string]identity.GitHubAccount) (*Reconciler, *diag.Log) {
	t.Helper()
	log := diag.New(&logging.Nop)
	if accounts == nil {
		accounts = map[string]identity.GitHubAccount{}
	}
	return New(doc, validator, &fakeEnricher{accounts: accounts}, log), log
}

func TestRunAppendsMissingAuthors(t *testing.T) {
	doc := writeCFF(t, baseCFF)
	hopper := account(t, "ghopper", "Grace Hopper", "grace@example.org")
	r, _ := newRun(t, doc, &lineValidator{}, map[string]identity.GitHubAccount{"ghopper": hopper})

	result, err := r.Run(context.Background(), contributions(t, hopper), nil)
	require.NoError(t, err)

	require.Len(t, result.Missing, 1)
	require.Len(t, result.Appended, 1)
	assert.Equal(t, "Grace Hopper", result.Appended[0].FullName())
	assert.Empty(t, result.AlreadyPresent)
	assert.Empty(t, result.Duplicates)

	// The file on disk now carries both authors.
	reloaded, err := cff.Load(doc.Path())
	require.NoError(t, err)
	authors, _ := reloaded.Authors()
	assert.Len(t, authors, 2)
}

func TestRunRecognizesExistingAuthor(t *testing.T) {
	doc := writeCFF(t, baseCFF)
	ada := commitID(t, "Ada Lovelace", "ada@example.org")
	r, _ := newRun(t, doc, &lineValidator{}, nil)

	result, err := r.Run(context.Background(), contributions(t, ada), nil)
	require.NoError(t, err)

	assert.Empty(t, result.Missing)
	require.Len(t, result.AlreadyPresent, 1)
	assert.Equal(t, ada.Key(), result.AlreadyPresent[0].Key())

	reloaded, err := cff.Load(doc.Path())
	require.NoError(t, err)
	authors, _ := reloaded.Authors()
	assert.Len(t, authors, 1, "no record appended for a known author")
}

func TestRunDeduplicatesWithinTheRun(t *testing.T) {
	// The same person arrives as a GitHub account and as a commit identity.
	doc := writeCFF(t, baseCFF)
	hopperAccount := account(t, "ghopper", "Grace Hopper", "grace@example.org")
	hopperCommit := commitID(t, "Grace Hopper", "grace@example.org")
	r, _ := newRun(t, doc, &lineValidator{}, map[string]identity.GitHubAccount{"ghopper": hopperAccount})

	result, err := r.Run(context.Background(), contributions(t, hopperAccount, hopperCommit), nil)
	require.NoError(t, err)

	assert.Len(t, result.Appended, 1)
	assert.Len(t, result.AlreadyPresent, 1)

	reloaded, err := cff.Load(doc.Path())
	require.NoError(t, err)
	authors, _ := reloaded.Authors()
	assert.Len(t, authors, 2)
}

func TestRunReportsExistingDuplicates(t *testing.T) {
	doc := writeCFF(t, `cff-version: 1.2.0
title: example
authors:
  - given-names: Ada
    family-names: Lovelace
    email: ada@example.org
  - given-names: Ada
    family-names: Lovelace
`)
	r, log := newRun(t, doc, &lineValidator{}, nil)

	result, err := r.Run(context.Background(), contribution.NewManager(), nil)
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	assert.True(t, log.HasWarnings())

	// Duplicates are reported, never merged.
	reloaded, err := cff.Load(doc.Path())
	require.NoError(t, err)
	authors, _ := reloaded.Authors()
	assert.Len(t, authors, 2)
}

func TestRunHonorsSkipDirectives(t *testing.T) {
	doc := writeCFF(t, baseCFF)
	bot := commitID(t, "Release Bot", "bot@example.org")
	r, _ := newRun(t, doc, &lineValidator{}, nil)

	skips := skip.Parse([]skip.Comment{
		{Body: "skip-authorship-by-email bot@example.org", CreatedAt: time.Now()},
	})
	result, err := r.Run(context.Background(), contributions(t, bot), skips)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Appended)
}

func TestRunContinuesPastFetchFailures(t *testing.T) {
	doc := writeCFF(t, baseCFF)
	ghost := account(t, "ghost", "", "")
	hopper := account(t, "ghopper", "Grace Hopper", "")
	r, log := newRun(t, doc, &lineValidator{}, map[string]identity.GitHubAccount{"ghopper": hopper})

	result, err := r.Run(context.Background(), contributions(t, ghost, hopper), nil)
	require.NoError(t, err)

	// The unfetchable contributor stays missing without an appended record;
	// the healthy one is still processed.
	assert.Len(t, result.Missing, 2)
	require.Len(t, result.Appended, 1)
	assert.Equal(t, "Grace Hopper", result.Appended[0].FullName())
	assert.True(t, log.HasWarnings())
}

func TestRunRecordsValidationErrors(t *testing.T) {
	doc := writeCFF(t, baseCFF)
	validator := &lineValidator{lines: "schema error one\nschema error two"}
	r, _ := newRun(t, doc, validator, nil)

	result, err := r.Run(context.Background(), contribution.NewManager(), nil)
	require.NoError(t, err)

	// Pre-update and post-update checks both report.
	assert.Equal(t, 2, validator.calls)
	assert.Len(t, result.ValidationErrors, 4)
	assert.Contains(t, result.ValidationErrors, "schema error one")
}

func TestRunDeterministicOrdering(t *testing.T) {
	hopper := account(t, "ghopper", "Grace Hopper", "grace@example.org")
	noether := commitID(t, "Emmy Noether", "emmy@example.org")

	var firstBytes []byte
	for i := 0; i < 2; i++ {
		doc := writeCFF(t, baseCFF)
		r, _ := newRun(t, doc, &lineValidator{}, map[string]identity.GitHubAccount{"ghopper": hopper})

		// Insertion order differs; contribution timestamps decide.
		m := contribution.NewManager()
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		if i == 0 {
			m.Add(hopper, contribution.New(contribution.KindCommit, "c1", base))
			m.Add(noether, contribution.New(contribution.KindCommit, "c2", base.Add(time.Minute)))
		} else {
			m.Add(noether, contribution.New(contribution.KindCommit, "c2", base.Add(time.Minute)))
			m.Add(hopper, contribution.New(contribution.KindCommit, "c1", base))
		}

		result, err := r.Run(context.Background(), m, nil)
		require.NoError(t, err)
		data, err := result.Updated.Bytes()
		require.NoError(t, err)
		if i == 0 {
			firstBytes = data
		} else {
			assert.Equal(t, string(firstBytes), string(data))
		}
	}
}
