package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/crrankyy/research-agent/pkg/cli/config"
	httpctrl "github.com/crrankyy/research-agent/pkg/controller/http"
	"github.com/crrankyy/research-agent/pkg/service/archive"
	"github.com/crrankyy/research-agent/pkg/usecase"
	"github.com/crrankyy/research-agent/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var noAuthUser string
	var appCfg config.App
	var repoCfg config.Repository
	var llmCfg config.LLM
	var searchCfg config.Search

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RESEARCH_AGENT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Accept requests without X-User-ID header as the given user (development only). Example: --no-auth=default-user",
			Sources:     cli.EnvVars("RESEARCH_AGENT_NO_AUTH"),
			Destination: &noAuthUser,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, searchCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}
			logging.Default().Info("LLM client configured", "llm", llmCfg)

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
				logging.Default().Info("Web search enabled", "search", searchCfg)
			} else {
				logging.Default().Info("Brave API key not configured, web search is disabled")
			}

			if bucket := appCfg.ArchiveBucket(); bucket != "" {
				archiveSvc, err := archive.New(ctx, bucket)
				if err != nil {
					return goerr.Wrap(err, "failed to configure report archive")
				}
				ucOpts = append(ucOpts, usecase.WithArchive(archiveSvc))
				logging.Default().Info("Report archiving enabled", "bucket", bucket)
			}

			ucs := usecase.New(repo, llmClient, ucOpts...)

			var httpOpts []httpctrl.Options
			if noAuthUser != "" {
				httpOpts = append(httpOpts, httpctrl.WithDefaultUser(noAuthUser))
				logging.Default().Warn("Running in no-auth mode (development only)", "user_id", noAuthUser)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(ucs, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
