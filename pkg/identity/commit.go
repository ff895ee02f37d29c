package identity

import (
	"strings"

	"github.com/agentstation/cffauthor/pkg/errors"
)

// CommitIdentity is the identity of a contributor known only from a raw git
// commit author line. The unique key is "{name} <{email}>"; at least one of
// name and email must be non-empty.
type CommitIdentity struct {
	Name  string
	Email string

	// ORCID evidence discovered during enrichment. Lookups use the email
	// only; commit display names vary too much to be a safe search signal.
	ORCID string
}

// CommitIdentityOption configures a CommitIdentity during construction.
type CommitIdentityOption func(*CommitIdentity)

// WithCommitORCID sets the ORCID discovered during enrichment.
func WithCommitORCID(orcid string) CommitIdentityOption {
	return func(c *CommitIdentity) {
		c.ORCID = strings.TrimSpace(orcid)
	}
}

// NewCommitIdentity constructs a commit identity from a commit author
// name/email pair.
func NewCommitIdentity(name, email string, opts ...CommitIdentityOption) (CommitIdentity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" && email == "" {
		return CommitIdentity{}, errors.NewConstructionError("commit identity", nil, "commit author name or email required")
	}

	c := CommitIdentity{Name: name, Email: email}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// Key returns the composed "{name} <{email}>" key.
func (c CommitIdentity) Key() string {
	return c.Name + " <" + c.Email + ">"
}

// Describe returns a human-readable identifier for logs.
func (c CommitIdentity) Describe() string {
	name := c.Name
	if name == "" {
		name = "unknown name"
	}
	email := c.Email
	if email == "" {
		email = "unknown email"
	}
	return name + " <" + email + "> (Git Commit)"
}
