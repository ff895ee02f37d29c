package app

import (
	"context"
	"fmt"

	"github.com/agentstation/cffauthor/internal/github"
	"github.com/agentstation/cffauthor/internal/report"
	"github.com/agentstation/cffauthor/pkg/cff"
	"github.com/agentstation/cffauthor/pkg/contribution"
	"github.com/agentstation/cffauthor/pkg/diag"
	"github.com/agentstation/cffauthor/pkg/enrich"
	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/identity"
	"github.com/agentstation/cffauthor/pkg/orcid"
	"github.com/agentstation/cffauthor/pkg/reconcile"
	"github.com/agentstation/cffauthor/pkg/skip"
)

// runUpdate wires and executes one reconciliation run.
func (a *App) runUpdate(ctx context.Context) error {
	cfg := a.config
	if err := cfg.RequireActionEnv(); err != nil {
		return err
	}

	event, err := github.LoadEvent(cfg.EventPath)
	if err != nil {
		return err
	}

	var clientOpts []github.Option
	if cfg.APIURL != "" {
		clientOpts = append(clientOpts, github.WithAPIURL(cfg.APIURL))
	}
	if cfg.GraphQLURL != "" {
		clientOpts = append(clientOpts, github.WithGraphQLURL(cfg.GraphQLURL))
	}
	client, err := github.NewClient(cfg.Token, clientOpts...)
	if err != nil {
		return err
	}

	log := diag.New(a.logger)
	collector := github.NewCollector(client, cfg.BotBlacklist, log)
	sources := github.Sources{
		Commits:       cfg.AuthorshipForCommits,
		Reviews:       cfg.AuthorshipForReviews,
		Comments:      cfg.AuthorshipForComments,
		Issues:        cfg.AuthorshipForIssues,
		IssueComments: cfg.AuthorshipForIssueComments,
	}
	contributions, skipComments, err := collector.Collect(ctx, cfg.Repository, event.PRNumber(), sources)
	if err != nil {
		return err
	}

	var skips *skip.Set
	if cfg.CanSkipAuthorship {
		skips = skip.Parse(skipComments)
	}

	doc, err := cff.Load(cfg.CFFPath)
	if err != nil {
		return err
	}

	enricher := enrich.New(orcid.New(), client, log)
	validator := cff.NewConvertValidator(cfg.ValidatorCommand)
	reconciler := reconcile.New(doc, validator, enricher, log)

	result, err := reconciler.Run(ctx, contributions, skips)
	if err != nil {
		return err
	}

	if err := a.report(ctx, client, event, contributions, result, log); err != nil {
		return err
	}

	return a.checkPolicies(result, log)
}

// report posts the review comment and writes the workflow outputs.
func (a *App) report(ctx context.Context, client *github.Client, event *github.Event,
	contributions *contribution.Manager, result *reconcile.Result, log *diag.Log) error {
	cfg := a.config

	compareRepo := event.HeadRepo()
	if compareRepo == "" {
		compareRepo = cfg.Repository
	}
	review := &report.Review{
		CFFPath:              cfg.CFFPath,
		Repo:                 cfg.Repository,
		CompareRepo:          compareRepo,
		CommitSHA:            cfg.CommitSHA,
		Version:              a.version,
		Contributions:        contributions,
		Result:               result,
		Diagnostics:          log,
		MissingInvalidates:   cfg.MissingAuthorInvalidatesPR,
		DuplicateInvalidates: cfg.DuplicateAuthorInvalidatesPR,
		ShowErrors:           cfg.ShowErrorMessages,
		ShowWarnings:         cfg.ShowWarningMessages,
		ShowInfos:            cfg.ShowInfoMessages,
	}
	body, err := review.Body()
	if err != nil {
		return err
	}

	if cfg.PostPRComment {
		if err := client.PostComment(ctx, cfg.Repository, event.PRNumber(), body); err != nil {
			return err
		}
	}

	if cfg.OutputPath == "" {
		return nil
	}
	outputs := report.Outputs{
		NewAuthors: missingManifest(contributions, result.Missing),
		Warnings:   log.Warnings(),
	}
	if len(result.Missing) > 0 {
		data, err := result.Updated.Bytes()
		if err != nil {
			return err
		}
		outputs.UpdatedCFF = data
	}
	return report.AppendOutputs(cfg.OutputPath, outputs)
}

// checkPolicies applies the configured invalidation policies and returns
// the error that fails the check run when one fires.
func (a *App) checkPolicies(result *reconcile.Result, log *diag.Log) error {
	cfg := a.config

	if cfg.MissingAuthorInvalidatesPR && len(result.Missing) > 0 {
		log.Errorf("pull request is invalidated because %d new author(s) are missing from the `%s` file",
			len(result.Missing), cfg.CFFPath)
		return fmt.Errorf("%w: %d author(s) missing from %s",
			errors.ErrPullRequestInvalid, len(result.Missing), cfg.CFFPath)
	}
	if cfg.DuplicateAuthorInvalidatesPR && len(result.Duplicates) > 0 {
		log.Errorf("pull request is invalidated because there is a duplicate author in the `%s` file", cfg.CFFPath)
		return fmt.Errorf("%w: duplicate authors in %s", errors.ErrPullRequestInvalid, cfg.CFFPath)
	}
	if cfg.InvalidCFFInvalidatesPR && len(result.ValidationErrors) > 0 {
		log.Errorf("pull request is invalidated because the `%s` file is not valid CFF", cfg.CFFPath)
		return fmt.Errorf("%w: %s failed schema validation", errors.ErrPullRequestInvalid, cfg.CFFPath)
	}
	return nil
}

// missingManifest exports the contribution listing restricted to the
// contributors missing from the citation file.
func missingManifest(contributions *contribution.Manager, missing []identity.Identity) []contribution.ManifestEntry {
	sub := contribution.NewManager()
	for _, id := range missing {
		for _, c := range contributions.For(id) {
			sub.Add(id, c)
		}
	}
	return sub.Manifest()
}
