// Package report renders the run's outcome for its two consumers: the
// Markdown review comment posted on the pull request and the key/value
// outputs the surrounding GitHub workflow reads.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/contribution"
	"github.com/agentstation/cffauthor/pkg/diag"
	"github.com/agentstation/cffauthor/pkg/identity"
	"github.com/agentstation/cffauthor/pkg/reconcile"
)

// Marker identifies the Action's own comment, so a rerun can recognize it.
const Marker = "<!-- cffauthor-pr-comment -->"

// Review assembles the Markdown body of the pull request comment.
type Review struct {
	CFFPath     string
	Repo        string // repository under review, for the footer commit link
	CompareRepo string // head repository, for commit links (may be a fork)
	CommitSHA   string
	Version     string

	Contributions *contribution.Manager
	Result        *reconcile.Result
	Diagnostics   *diag.Log

	MissingInvalidates   bool
	DuplicateInvalidates bool
	ShowErrors           bool
	ShowWarnings         bool
	ShowInfos            bool

	// Now stamps the footer; nil means time.Now.
	Now func() time.Time
}

// Body renders the comment.
func (r *Review) Body() (string, error) {
	var b strings.Builder
	b.WriteString(Marker + "\n")
	b.WriteString("### CFF Author Update ###\n")

	b.WriteString("\n**Pull Request Status: " + r.status() + "**\n")
	r.writeContributions(&b)

	if err := r.writeFileBlock(&b); err != nil {
		return "", err
	}
	r.writeDiagnostics(&b)
	r.writeFooter(&b)

	return b.String(), nil
}

// status summarizes validity from the collected diagnostics.
func (r *Review) status() string {
	hasErrors := r.Diagnostics.HasErrors()
	hasWarnings := r.Diagnostics.HasWarnings()
	switch {
	case hasErrors && hasWarnings:
		return "Invalid (with Errors and Warnings)"
	case hasErrors:
		return "Invalid (with Errors)"
	case hasWarnings:
		return "Valid (with Warnings)"
	default:
		return "Valid"
	}
}

// writeContributions lists every contributor with their contributions,
// grouped by category, flagging missing and skipped contributors.
func (r *Review) writeContributions(b *strings.Builder) {
	b.WriteString("\n**Contributors & Contributions in Pull Request:**\n")

	contributors := r.Contributions.SortedByFirstContribution()
	if len(contributors) == 0 {
		b.WriteString("\n**No contributions.**\n")
		return
	}

	missing := keySet(r.Result.Missing)
	skipped := keySet(r.Result.Skipped)

	for _, contributor := range contributors {
		suffix := ""
		if _, ok := missing[contributor.Key()]; ok {
			suffix = fmt.Sprintf(" (Missing author from `%s`)", r.CFFPath)
		}
		if _, ok := skipped[contributor.Key()]; ok {
			suffix += " (Skipped for recommended or required authorship)"
		}
		fmt.Fprintf(b, "\n#### %s%s\n", heading(contributor), suffix)

		categories := r.Contributions.CategoriesFor(contributor)
		for _, kind := range contribution.KindPriority {
			list := categories[kind]
			if len(list) == 0 {
				continue
			}
			fmt.Fprintf(b, "- **%s**\n", kind.DisplayName())
			for _, c := range list {
				if c.Kind == contribution.KindCommit {
					fmt.Fprintf(b, "  - [`%s`](%s/%s/commit/%s)\n",
						shortSHA(c.ID), constants.GitHubURL, r.CompareRepo, c.ID)
				} else {
					fmt.Fprintf(b, "  - [Link](%s)\n", c.ID)
				}
			}
		}
	}

	if len(skipped) > 0 {
		fmt.Fprintf(b, "\n**Note:** Contributors marked \"(Skipped for recommended or required authorship)\" "+
			"were manually skipped for new authorship consideration. If they are already present in the `%s` "+
			"file, their author entry remains; the skip command only stops this check from recommending or "+
			"requiring authorship.\n", r.CFFPath)
	}
}

// writeFileBlock shows the recommended file when authors are missing, or
// the current file otherwise.
func (r *Review) writeFileBlock(b *strings.Builder) error {
	if len(r.Result.Missing) > 0 {
		data, err := r.Result.Updated.Bytes()
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\n**Recommended `%s` file (updated with missing authors):**\n```yaml\n%s```\n", r.CFFPath, data)
		fmt.Fprintf(b, "***Important: this recommended `%s` file has not been committed to the pull request. "+
			"It can be copied and committed manually. For GitHub users to be recognized on later runs, keep "+
			"their GitHub profile URL as the `alias` field.", r.CFFPath)
		if r.MissingInvalidates {
			fmt.Fprintf(b, " While any qualified contributor is missing from `%s`, the pull request stays "+
				"invalid. Specific contributors can be skipped or unskipped for authorship with "+
				"skip-authorship comment commands.", r.CFFPath)
		}
		b.WriteString("***\n")
		return nil
	}

	duplicateNote := ""
	if len(r.Result.Duplicates) > 0 {
		duplicateNote = ", but has at least one duplicate author"
	}
	fmt.Fprintf(b, "\n**Current `%s` file (contains all qualified authors from this pull request%s).**", r.CFFPath, duplicateNote)
	if len(r.Result.Duplicates) > 0 && r.DuplicateInvalidates {
		fmt.Fprintf(b, " The pull request stays invalid until no duplicate authors exist in the `%s` file.", r.CFFPath)
	}
	data, err := r.Result.Original.Bytes()
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "\n```yaml\n%s```\n", data)
	return nil
}

// writeDiagnostics appends the error, warning, and info sections, each
// gated by its show flag; hidden sections still announce their presence.
func (r *Review) writeDiagnostics(b *strings.Builder) {
	writeSection(b, "🚨 Errors", r.Diagnostics.Errors(), r.ShowErrors,
		"The pull request has errors. Please check the logs for details.")
	writeSection(b, "⚠️ Warnings", r.Diagnostics.Warnings(), r.ShowWarnings,
		"The pull request has warnings. Please check the logs for details.")
	writeSection(b, "ℹ️ Info", r.Diagnostics.Infos(), r.ShowInfos,
		"The pull request has info messages. Please check the logs for details.")
}

func writeSection(b *strings.Builder, title string, messages []string, show bool, hiddenNote string) {
	if len(messages) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\n**%s:**\n", title)
	if !show {
		b.WriteString(hiddenNote)
		return
	}
	lines := make([]string, len(messages))
	for i, m := range messages {
		lines[i] = "- " + m
	}
	b.WriteString(strings.Join(lines, "\n"))
}

func (r *Review) writeFooter(b *strings.Builder) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	timestamp := now().UTC().Format("2006-01-02 15:04")
	fmt.Fprintf(b, "\n\n_Last updated: %s UTC", timestamp)
	if r.CommitSHA != "" {
		fmt.Fprintf(b, " · Commit [`%s`](%s/%s/commit/%s)",
			shortSHA(r.CommitSHA), constants.GitHubURL, r.Repo, r.CommitSHA)
	}
	b.WriteString("_\n")
	if r.Version != "" {
		fmt.Fprintf(b, "\n***Powered by cffauthor v%s***\n", r.Version)
	}
}

// heading returns the section heading for a contributor: the @username
// for GitHub accounts, the email (or name) for commit identities.
func heading(contributor identity.Identity) string {
	switch id := contributor.(type) {
	case identity.GitHubAccount:
		return "@" + id.Username
	case identity.CommitIdentity:
		if id.Email != "" {
			return id.Email
		}
		return id.Name
	default:
		return contributor.Describe()
	}
}

func keySet(ids []identity.Identity) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id.Key()] = struct{}{}
	}
	return set
}

func shortSHA(sha string) string {
	if len(sha) <= constants.ShortSHALength {
		return sha
	}
	return sha[:constants.ShortSHALength]
}
