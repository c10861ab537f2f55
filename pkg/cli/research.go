package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/crrankyy/research-agent/pkg/cli/config"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
	"github.com/crrankyy/research-agent/pkg/repository/memory"
	"github.com/crrankyy/research-agent/pkg/usecase"
)

func cmdResearch() *cli.Command {
	var appCfg config.App
	var llmCfg config.LLM
	var searchCfg config.Search

	flags := appCfg.Flags()
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, searchCfg.Flags()...)

	return &cli.Command{
		Name:      "research",
		Aliases:   []string{"r"},
		Usage:     "Run a single research query and print the report",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("query argument is required")
			}

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			tuning, err := appCfg.Tuning()
			if err != nil {
				return goerr.Wrap(err, "failed to load tuning configuration")
			}

			ucOpts := []usecase.Option{
				usecase.WithTuning(tuning),
				usecase.WithArxivSearch(searchCfg.ConfigureArxiv()),
			}
			webSvc, err := searchCfg.ConfigureWeb()
			if err != nil {
				return goerr.Wrap(err, "failed to configure web search")
			}
			if webSvc != nil {
				ucOpts = append(ucOpts, usecase.WithWebSearch(webSvc))
			}

			repo := memory.New()
			defer repo.Close() //nolint:errcheck // in-memory repository

			ucs := usecase.New(repo, llmClient, ucOpts...)

			const userID = types.UserID("cli")
			run, err := ucs.Research.Start(ctx, userID, query)
			if err != nil {
				return err
			}

			return watchRun(ctx, ucs.Research, userID, run.ID)
		},
	}
}

// watchRun polls the run until it reaches a terminal state, printing log
// entries as they appear and the final report at the end
func watchRun(ctx context.Context, uc *usecase.ResearchUseCase, userID types.UserID, runID types.RunID) error {
	statusColor := color.New(color.FgCyan)
	planColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed, color.Bold)
	titleColor := color.New(color.FgGreen, color.Bold)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var seen int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		entries, err := uc.Logs(ctx, userID, runID)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.Seq <= seen {
				continue
			}
			seen = entry.Seq

			switch p := entry.Payload.(type) {
			case *model.StatusPayload:
				statusColor.Println(p.Message)
			case *model.PlanPayload:
				planColor.Printf("Route: %s", p.Route)
				if len(p.WebQueries) > 0 {
					planColor.Printf("  web=%v", p.WebQueries)
				}
				if len(p.ArxivQueries) > 0 {
					planColor.Printf("  arxiv=%v", p.ArxivQueries)
				}
				planColor.Println()
			case *model.ErrorPayload:
				errorColor.Println(p.Message)
			}
		}

		run, err := uc.Get(ctx, userID, runID)
		if err != nil {
			return err
		}
		if !run.Status.IsTerminal() {
			continue
		}

		if run.Status == types.RunStatusFailed {
			return goerr.New("research run failed", goerr.V("message", run.ErrorMessage))
		}

		titleColor.Println("\n--- Report ---")
		fmt.Println(run.FinalReport)

		citations, err := uc.Citations(ctx, userID, runID)
		if err != nil {
			return err
		}
		if len(citations) > 0 {
			titleColor.Println("\n--- Citations ---")
			for _, c := range citations {
				fmt.Printf("- %s (%s)\n", c.Title, c.URL)
			}
		}
		return nil
	}
}
