package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/errors"
)

// Config holds the application configuration. In the Action every setting
// arrives as an environment variable; .env files serve local runs.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// GitHub Actions environment
	Token      string
	Repository string
	EventPath  string
	OutputPath string
	CommitSHA  string
	APIURL     string
	GraphQLURL string

	// Run inputs
	CFFPath          string
	BotBlacklist     string
	ValidatorCommand string

	// Contribution sources
	AuthorshipForCommits       bool
	AuthorshipForReviews       bool
	AuthorshipForIssues        bool
	AuthorshipForIssueComments bool
	AuthorshipForComments      bool

	// Behavior switches
	PostPRComment     bool
	CanSkipAuthorship bool

	// Invalidation policies
	MissingAuthorInvalidatesPR   bool
	DuplicateAuthorInvalidatesPR bool
	InvalidCFFInvalidatesPR      bool

	// Comment verbosity
	ShowErrorMessages   bool
	ShowWarningMessages bool
	ShowInfoMessages    bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from environment variables and .env files.
// Every boolean input defaults to true and is parsed case-insensitively:
// any value other than "true" disables it, matching the Action's inputs.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	config := &Config{
		Token:      viper.GetString("github_token"),
		Repository: viper.GetString("github_repository"),
		EventPath:  viper.GetString("github_event_path"),
		OutputPath: viper.GetString("github_output"),
		CommitSHA:  viper.GetString("github_sha"),
		APIURL:     viper.GetString("github_api_url"),
		GraphQLURL: viper.GetString("github_graphql_url"),

		CFFPath:          stringSetting("cff_path", constants.DefaultCFFPath),
		BotBlacklist:     stringSetting("bot_blacklist", constants.DefaultBotBlacklist),
		ValidatorCommand: viper.GetString("cffconvert_command"),

		AuthorshipForCommits:       boolSetting("authorship_for_pr_commits", true),
		AuthorshipForReviews:       boolSetting("authorship_for_pr_reviews", true),
		AuthorshipForIssues:        boolSetting("authorship_for_pr_issues", true),
		AuthorshipForIssueComments: boolSetting("authorship_for_pr_issue_comments", true),
		AuthorshipForComments:      boolSetting("authorship_for_pr_comments", true),

		PostPRComment:     boolSetting("post_pr_comment", true),
		CanSkipAuthorship: boolSetting("can_skip_authorship", true),

		MissingAuthorInvalidatesPR:   boolSetting("missing_author_invalidates_pr", true),
		DuplicateAuthorInvalidatesPR: boolSetting("duplicate_author_invalidates_pr", true),
		InvalidCFFInvalidatesPR:      boolSetting("invalid_cff_invalidates_pr", true),

		ShowErrorMessages:   boolSetting("show_error_messages_in_pr_comment", true),
		ShowWarningMessages: boolSetting("show_warning_messages_in_pr_comment", true),
		ShowInfoMessages:    boolSetting("show_info_messages_in_pr_comment", true),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// RequireActionEnv verifies the environment a reconciliation run cannot do
// without.
func (c *Config) RequireActionEnv() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.ErrTokenRequired
	}
	if c.Repository == "" {
		return errors.NewConstructionError("config", nil, "GITHUB_REPOSITORY is not set")
	}
	if c.EventPath == "" {
		return errors.NewConstructionError("config", nil, "GITHUB_EVENT_PATH is not set")
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// boolSetting reads a boolean input. Only the literal "true", in any case,
// enables it; an unset input takes the default.
func boolSetting(key string, def bool) bool {
	value := viper.GetString(key)
	if value == "" {
		return def
	}
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// stringSetting reads a string input with a default.
func stringSetting(key, def string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}
	return def
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
