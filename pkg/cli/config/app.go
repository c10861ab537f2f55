package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/crrankyy/research-agent/pkg/usecase"
)

// App holds CLI flags for application level settings
type App struct {
	tuningPath    string
	archiveBucket string
}

// tuningFile is the TOML shape of the pipeline tuning file. All durations
// are in seconds; zero values keep the defaults.
type tuningFile struct {
	PlannerTimeoutSec   int `toml:"planner_timeout_sec"`
	SearchTimeoutSec    int `toml:"search_timeout_sec"`
	SynthesisTimeoutSec int `toml:"synthesis_timeout_sec"`
	FollowUpTimeoutSec  int `toml:"followup_timeout_sec"`
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tuning-file",
			Usage:       "Path to TOML file with pipeline timeout overrides",
			Sources:     cli.EnvVars("RESEARCH_AGENT_TUNING_FILE"),
			Destination: &a.tuningPath,
		},
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "GCS bucket for archiving completed reports (archiving is disabled when empty)",
			Sources:     cli.EnvVars("RESEARCH_AGENT_ARCHIVE_BUCKET"),
			Destination: &a.archiveBucket,
		},
	}
}

// ArchiveBucket returns the configured archive bucket name
func (a *App) ArchiveBucket() string {
	return a.archiveBucket
}

// Tuning loads the pipeline tuning, falling back to defaults for fields
// the file omits or when no file is configured
func (a *App) Tuning() (usecase.Tuning, error) {
	tuning := usecase.DefaultTuning()
	if a.tuningPath == "" {
		return tuning, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(a.tuningPath)
	if err != nil {
		return tuning, goerr.Wrap(err, "failed to read tuning file", goerr.V("path", a.tuningPath))
	}

	var file tuningFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return tuning, goerr.Wrap(err, "failed to parse tuning file", goerr.V("path", a.tuningPath))
	}

	if file.PlannerTimeoutSec > 0 {
		tuning.PlannerTimeout = time.Duration(file.PlannerTimeoutSec) * time.Second
	}
	if file.SearchTimeoutSec > 0 {
		tuning.SearchTimeout = time.Duration(file.SearchTimeoutSec) * time.Second
	}
	if file.SynthesisTimeoutSec > 0 {
		tuning.SynthesisTimeout = time.Duration(file.SynthesisTimeoutSec) * time.Second
	}
	if file.FollowUpTimeoutSec > 0 {
		tuning.FollowUpTimeout = time.Duration(file.FollowUpTimeoutSec) * time.Second
	}

	return tuning, nil
}
