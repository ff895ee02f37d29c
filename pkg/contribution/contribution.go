// Package contribution aggregates the timestamped evidence events that link
// contributors to a pull request.
package contribution

import (
	"time"
)

// Kind categorizes a contribution event.
type Kind string

// Contribution kinds.
const (
	KindCommit       Kind = "commit"
	KindComment      Kind = "pr_comment"
	KindReview       Kind = "review"
	KindIssue        Kind = "issue"
	KindIssueComment Kind = "issue_comment"
	KindUnknown      Kind = "unknown"
)

// KindPriority lists kinds in report priority order: when a contributor has
// several kinds of contributions, the first kind present here is the one
// cited in warnings.
var KindPriority = []Kind{KindCommit, KindComment, KindReview, KindIssue, KindIssueComment, KindUnknown}

// DisplayName returns the human-readable category name used in reports.
func (k Kind) DisplayName() string {
	switch k {
	case KindCommit:
		return "Commit"
	case KindComment:
		return "Pull Request Comment"
	case KindReview:
		return "Review"
	case KindIssue:
		return "Issue"
	case KindIssueComment:
		return "Issue Comment"
	default:
		return "Contribution"
	}
}

// Contribution is a single evidence event. The ID is a commit SHA for
// commits and an event URL for everything else.
type Contribution struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// New constructs a contribution. A zero createdAt sorts before every real
// timestamp, matching events whose creation time is unknown.
func New(kind Kind, id string, createdAt time.Time) Contribution {
	return Contribution{ID: id, Kind: kind, CreatedAt: createdAt}
}

// Before reports whether c sorts before other: ascending by timestamp,
// ties broken by ID so ordering stays deterministic.
func (c Contribution) Before(other Contribution) bool {
	if !c.CreatedAt.Equal(other.CreatedAt) {
		return c.CreatedAt.Before(other.CreatedAt)
	}
	return c.ID < other.ID
}
