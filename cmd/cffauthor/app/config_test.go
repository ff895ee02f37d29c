package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cffauthor/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "CITATION.cff", config.CFFPath)
	assert.Equal(t, "github-actions[bot]", config.BotBlacklist)

	assert.True(t, config.AuthorshipForCommits)
	assert.True(t, config.AuthorshipForReviews)
	assert.True(t, config.AuthorshipForIssues)
	assert.True(t, config.AuthorshipForIssueComments)
	assert.True(t, config.AuthorshipForComments)
	assert.True(t, config.PostPRComment)
	assert.True(t, config.CanSkipAuthorship)
	assert.True(t, config.MissingAuthorInvalidatesPR)
	assert.True(t, config.DuplicateAuthorInvalidatesPR)
	assert.True(t, config.InvalidCFFInvalidatesPR)
	assert.True(t, config.ShowErrorMessages)
	assert.True(t, config.ShowWarningMessages)
	assert.True(t, config.ShowInfoMessages)
}

func TestLoadConfigBooleanParsing(t *testing.T) {
	t.Setenv("POST_PR_COMMENT", "false")
	t.Setenv("AUTHORSHIP_FOR_PR_REVIEWS", "FALSE")
	t.Setenv("MISSING_AUTHOR_INVALIDATES_PR", "True")
	t.Setenv("CAN_SKIP_AUTHORSHIP", "nonsense")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, config.PostPRComment)
	assert.False(t, config.AuthorshipForReviews, "boolean inputs are case-insensitive")
	assert.True(t, config.MissingAuthorInvalidatesPR)
	assert.False(t, config.CanSkipAuthorship, "anything other than true disables")
}

func TestLoadConfigActionEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "secret")
	t.Setenv("GITHUB_REPOSITORY", "octo/repo")
	t.Setenv("GITHUB_EVENT_PATH", "/tmp/event.json")
	t.Setenv("GITHUB_SHA", "abc123")
	t.Setenv("CFF_PATH", "docs/CITATION.cff")
	t.Setenv("BOT_BLACKLIST", "mybot[bot]")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "secret", config.Token)
	assert.Equal(t, "octo/repo", config.Repository)
	assert.Equal(t, "/tmp/event.json", config.EventPath)
	assert.Equal(t, "abc123", config.CommitSHA)
	assert.Equal(t, "docs/CITATION.cff", config.CFFPath)
	assert.Equal(t, "mybot[bot]", config.BotBlacklist)

	require.NoError(t, config.RequireActionEnv())
}

func TestRequireActionEnv(t *testing.T) {
	config := &Config{}
	require.ErrorIs(t, config.RequireActionEnv(), errors.ErrTokenRequired)

	config.Token = "secret"
	err := config.RequireActionEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_REPOSITORY")

	config.Repository = "octo/repo"
	err = config.RequireActionEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_EVENT_PATH")

	config.EventPath = "/tmp/event.json"
	require.NoError(t, config.RequireActionEnv())
}
