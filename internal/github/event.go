package github

import (
	"encoding/json"
	"os"

	"github.com/agentstation/cffauthor/pkg/errors"
)

// Event is the pull_request webhook payload delivered to the Action via
// GITHUB_EVENT_PATH, reduced to the fields the run needs.
type Event struct {
	Number      int `json:"number"`
	PullRequest *struct {
		Number int `json:"number"`
		Head   struct {
			Ref  string `json:"ref"`
			Repo struct {
				FullName string `json:"full_name"`
			} `json:"repo"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
}

// LoadEvent reads and parses the event payload at path. Only pull_request
// events are supported.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseEvent(data)
}

// ParseEvent parses a pull_request event payload.
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.WrapParse("json", "github event", err)
	}
	if event.PullRequest == nil {
		return nil, errors.NewConstructionError("github event", nil, "only pull_request events are supported")
	}
	if event.PRNumber() == 0 {
		return nil, errors.NewConstructionError("github event", nil, "event has no pull request number")
	}
	return &event, nil
}

// PRNumber returns the pull request number, from either payload location.
func (e *Event) PRNumber() int {
	if e.Number != 0 {
		return e.Number
	}
	if e.PullRequest != nil {
		return e.PullRequest.Number
	}
	return 0
}

// HeadRepo returns the full name of the repository the PR branch lives in,
// which may be a fork of the repository under review.
func (e *Event) HeadRepo() string {
	if e.PullRequest == nil {
		return ""
	}
	return e.PullRequest.Head.Repo.FullName
}

// HeadBranch returns the PR branch name.
func (e *Event) HeadBranch() string {
	if e.PullRequest == nil {
		return ""
	}
	return e.PullRequest.Head.Ref
}

// BaseBranch returns the branch the PR targets.
func (e *Event) BaseBranch() string {
	if e.PullRequest == nil {
		return ""
	}
	return e.PullRequest.Base.Ref
}
