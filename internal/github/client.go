// Package github talks to the GitHub REST and GraphQL APIs for one pull
// request: fetching the evidence the reconciler needs (commits, reviews,
// comments, linked issues, user profiles) and posting the review comment.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/enrich"
	"github.com/agentstation/cffauthor/pkg/errors"
)

// Client is an authenticated GitHub API client.
type Client struct {
	http       *http.Client
	apiURL     string
	graphqlURL string
	token      string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAPIURL overrides the REST API base URL, mainly for tests.
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithGraphQLURL overrides the GraphQL endpoint, mainly for tests.
func WithGraphQLURL(u string) Option {
	return func(c *Client) { c.graphqlURL = u }
}

// NewClient creates a client. The token is required; every call this
// client makes needs authenticated API limits.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.ErrTokenRequired
	}
	c := &Client{
		http:       &http.Client{Timeout: constants.DefaultHTTPTimeout},
		apiURL:     constants.GitHubAPIURL,
		graphqlURL: constants.GitHubGraphQLURL,
		token:      token,
		userAgent:  constants.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// User is a GitHub account reference as it appears in API payloads.
type User struct {
	Login string `json:"login"`
}

// Commit is one commit of a pull request.
type Commit struct {
	SHA    string `json:"sha"`
	Author *User  `json:"author"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// Review is one pull request review.
type Review struct {
	User        *User     `json:"user"`
	HTMLURL     string    `json:"html_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Comment is one issue or pull request comment.
type Comment struct {
	User      *User     `json:"user"`
	HTMLURL   string    `json:"html_url"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkedIssue is an issue the pull request closes.
type LinkedIssue struct {
	Number    int       `json:"number"`
	URL       string    `json:"url"`
	Author    *User     `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile fetches a user profile, in the shape the enricher consumes.
func (c *Client) Profile(ctx context.Context, username string) (enrich.Profile, error) {
	var user struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Bio   string `json:"bio"`
		Blog  string `json:"blog"`
		Type  string `json:"type"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/users/%s", c.apiURL, username), &user); err != nil {
		return enrich.Profile{}, err
	}
	return enrich.Profile{
		Name:         strings.TrimSpace(user.Name),
		Email:        strings.TrimSpace(user.Email),
		Bio:          strings.TrimSpace(user.Bio),
		Blog:         strings.TrimSpace(user.Blog),
		Organization: user.Type == "Organization",
	}, nil
}

// PullRequestCommits lists the commits of a pull request.
func (c *Client) PullRequestCommits(ctx context.Context, repo string, pr int) ([]Commit, error) {
	var commits []Commit
	err := c.get(ctx, fmt.Sprintf("%s/repos/%s/pulls/%d/commits", c.apiURL, repo, pr), &commits)
	return commits, err
}

// PullRequestReviews lists the reviews of a pull request.
func (c *Client) PullRequestReviews(ctx context.Context, repo string, pr int) ([]Review, error) {
	var reviews []Review
	err := c.get(ctx, fmt.Sprintf("%s/repos/%s/pulls/%d/reviews", c.apiURL, repo, pr), &reviews)
	return reviews, err
}

// PullRequestComments lists the conversation comments of a pull request.
// Pull requests are issues to this endpoint.
func (c *Client) PullRequestComments(ctx context.Context, repo string, pr int) ([]Comment, error) {
	return c.IssueComments(ctx, repo, pr)
}

// IssueComments lists the comments of an issue.
func (c *Client) IssueComments(ctx context.Context, repo string, issue int) ([]Comment, error) {
	var comments []Comment
	err := c.get(ctx, fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.apiURL, repo, issue), &comments)
	return comments, err
}

// linkedIssuesQuery fetches the issues a PR closes. The REST timeline API
// only exposes cross-references, so this goes through GraphQL.
const linkedIssuesQuery = `query($owner: String!, $name: String!, $prNumber: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $prNumber) {
      closingIssuesReferences(first: %d) {
        nodes {
          number
          url
          author { login }
          createdAt
        }
      }
    }
  }
}`

// LinkedIssues lists the issues the pull request closes, capped at
// constants.MaxLinkedIssues.
func (c *Client) LinkedIssues(ctx context.Context, repo string, pr int) ([]LinkedIssue, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return nil, errors.NewConstructionError("repository", repo, `expected "owner/name"`)
	}

	payload := map[string]any{
		"query": fmt.Sprintf(linkedIssuesQuery, constants.MaxLinkedIssues),
		"variables": map[string]any{
			"owner":    owner,
			"name":     name,
			"prNumber": pr,
		},
	}

	var result struct {
		Data struct {
			Repository struct {
				PullRequest struct {
					ClosingIssuesReferences struct {
						Nodes []LinkedIssue `json:"nodes"`
					} `json:"closingIssuesReferences"`
				} `json:"pullRequest"`
			} `json:"repository"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := c.post(ctx, c.graphqlURL, payload, &result); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, &errors.APIError{
			Service:  "github",
			Message:  result.Errors[0].Message,
			Endpoint: c.graphqlURL,
		}
	}
	return result.Data.Repository.PullRequest.ClosingIssuesReferences.Nodes, nil
}

// PostComment posts a comment on a pull request.
func (c *Client) PostComment(ctx context.Context, repo string, pr int, body string) error {
	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.apiURL, repo, pr)
	return c.post(ctx, url, map[string]string{"body": body}, nil)
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapAPI("github", 0, err)
	}
	return c.do(req, target)
}

// post performs an authenticated JSON POST, decoding the response when
// target is non-nil.
func (c *Client) post(ctx context.Context, url string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapParse("json", url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.WrapAPI("github", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}

// do sends the request with auth headers and decodes the response.
func (c *Client) do(req *http.Request, target any) error {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapAPI("github", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", req.URL.String(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Service:    "github",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   req.URL.String(),
		}
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", req.URL.String(), err)
	}
	return nil
}
