package github

import (
	"context"
	"regexp"
	"strings"

	"github.com/agentstation/cffauthor/pkg/contribution"
	"github.com/agentstation/cffauthor/pkg/diag"
	"github.com/agentstation/cffauthor/pkg/identity"
	"github.com/agentstation/cffauthor/pkg/skip"
)

// coauthorPattern matches a Co-authored-by commit message trailer.
var coauthorPattern = regexp.MustCompile(`(?i)^Co-authored-by:\s*(.+?)\s*<(.+?)>$`)

// Sources selects which contribution sources the collector reads.
type Sources struct {
	Commits       bool
	Reviews       bool
	Comments      bool
	Issues        bool
	IssueComments bool
}

// Collector gathers the contributors of one pull request into a
// contribution.Manager, filtering out blacklisted bot accounts.
type Collector struct {
	client    *Client
	blacklist map[string]struct{}
	log       *diag.Log
}

// NewCollector creates a Collector. The blacklist holds bot usernames (and
// commit author names) excluded from authorship, comma-separated.
func NewCollector(client *Client, blacklist string, log *diag.Log) *Collector {
	names := make(map[string]struct{})
	for _, name := range strings.Split(blacklist, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names[name] = struct{}{}
		}
	}
	return &Collector{client: client, blacklist: names, log: log}
}

func (c *Collector) blacklisted(name string) bool {
	_, ok := c.blacklist[name]
	return ok
}

// Collect reads the enabled sources and merges them into one manager. PR
// comments are always fetched and returned for skip-directive scanning,
// even when comment authorship is disabled. Per-source failures degrade to
// warnings; the other sources still contribute.
func (c *Collector) Collect(ctx context.Context, repo string, pr int, sources Sources) (*contribution.Manager, []skip.Comment, error) {
	manager := contribution.NewManager()

	if sources.Commits {
		c.collectCommits(ctx, manager, repo, pr)
	}
	if sources.Reviews {
		c.collectReviews(ctx, manager, repo, pr)
	}

	comments, err := c.client.PullRequestComments(ctx, repo, pr)
	if err != nil {
		c.log.Warnf("unable to fetch PR comments: %v", err)
	}
	skipComments := make([]skip.Comment, 0, len(comments))
	for _, comment := range comments {
		skipComments = append(skipComments, skip.Comment{Body: comment.Body, CreatedAt: comment.CreatedAt})
	}
	if sources.Comments {
		c.addComments(manager, comments, contribution.KindComment)
	}

	if sources.Issues || sources.IssueComments {
		c.collectIssues(ctx, manager, repo, pr, sources)
	}

	return manager, skipComments, nil
}

// collectCommits records the commit authors, the GitHub accounts behind
// them when the API resolved one, and every Co-authored-by trailer.
func (c *Collector) collectCommits(ctx context.Context, manager *contribution.Manager, repo string, pr int) {
	commits, err := c.client.PullRequestCommits(ctx, repo, pr)
	if err != nil {
		c.log.Warnf("unable to fetch PR commits: %v", err)
		return
	}

	for _, commit := range commits {
		event := contribution.New(contribution.KindCommit, commit.SHA, commit.Commit.Author.Date)

		if commit.Author != nil && commit.Author.Login != "" {
			if !c.blacklisted(commit.Author.Login) {
				c.addAccount(manager, commit.Author.Login, event)
			}
		} else if !c.blacklisted(commit.Commit.Author.Name) {
			c.addCommitAuthor(manager, commit.Commit.Author.Name, commit.Commit.Author.Email, event)
		}

		for _, line := range strings.Split(commit.Commit.Message, "\n") {
			m := coauthorPattern.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			name, email := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if !c.blacklisted(name) {
				c.addCommitAuthor(manager, name, email, event)
			}
		}
	}
}

// collectReviews records review authors.
func (c *Collector) collectReviews(ctx context.Context, manager *contribution.Manager, repo string, pr int) {
	reviews, err := c.client.PullRequestReviews(ctx, repo, pr)
	if err != nil {
		c.log.Warnf("unable to fetch PR reviews: %v", err)
		return
	}
	for _, review := range reviews {
		if review.User == nil || review.User.Login == "" || c.blacklisted(review.User.Login) {
			continue
		}
		c.addAccount(manager, review.User.Login, contribution.New(contribution.KindReview, review.HTMLURL, review.SubmittedAt))
	}
}

// collectIssues records the authors of linked issues and, when enabled,
// of their comments.
func (c *Collector) collectIssues(ctx context.Context, manager *contribution.Manager, repo string, pr int, sources Sources) {
	issues, err := c.client.LinkedIssues(ctx, repo, pr)
	if err != nil {
		c.log.Warnf("unable to fetch linked issues: %v", err)
		return
	}

	for _, issue := range issues {
		if sources.Issues && issue.Author != nil && issue.Author.Login != "" && !c.blacklisted(issue.Author.Login) {
			c.addAccount(manager, issue.Author.Login, contribution.New(contribution.KindIssue, issue.URL, issue.CreatedAt))
		}
		if !sources.IssueComments {
			continue
		}
		comments, err := c.client.IssueComments(ctx, repo, issue.Number)
		if err != nil {
			c.log.Warnf("unable to fetch comments of issue #%d: %v", issue.Number, err)
			continue
		}
		c.addComments(manager, comments, contribution.KindIssueComment)
	}
}

// addComments records comment authors under the given kind.
func (c *Collector) addComments(manager *contribution.Manager, comments []Comment, kind contribution.Kind) {
	for _, comment := range comments {
		if comment.User == nil || comment.User.Login == "" || c.blacklisted(comment.User.Login) {
			continue
		}
		c.addAccount(manager, comment.User.Login, contribution.New(kind, comment.HTMLURL, comment.CreatedAt))
	}
}

// addAccount records an event for a GitHub account contributor.
func (c *Collector) addAccount(manager *contribution.Manager, username string, event contribution.Contribution) {
	account, err := identity.NewGitHubAccount(username)
	if err != nil {
		c.log.Warnf("ignoring contributor with invalid GitHub username %q: %v", username, err)
		return
	}
	manager.Add(account, event)
}

// addCommitAuthor records an event for a raw commit author.
func (c *Collector) addCommitAuthor(manager *contribution.Manager, name, email string, event contribution.Contribution) {
	commit, err := identity.NewCommitIdentity(name, email)
	if err != nil {
		c.log.Warnf("ignoring commit author with neither name nor email: %v", err)
		return
	}
	manager.Add(commit, event)
}
