// Package cli implements the depot command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/backend"
	"github.com/matzehuels/depot/pkg/buildinfo"
	"github.com/matzehuels/depot/pkg/cache"
	"github.com/matzehuels/depot/pkg/config"
	"github.com/matzehuels/depot/pkg/deps"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/observability"
	"github.com/matzehuels/depot/pkg/workflow"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "depot"

	// argsGroup is the group type of coordinates given on the command line.
	argsGroup = "run"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	file        string
	metricsFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Depot resolves, fetches and publishes versioned artifacts",
		Long:          `Depot resolves a project's declared dependencies into one conflict-free set of artifact versions, fetches them through a chain of storage backends and publishes build results back.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.file, "file", "f", "", "project file (default depot.toml, depot.yaml or depot.yml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics of the run to this file")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Project Loading
// =============================================================================

// project bundles what every resolving command needs.
type project struct {
	file     *config.File
	wf       *workflow.Workflow
	svc      *deps.Service
	listings cache.Cache

	registry    *prometheus.Registry
	metricsFile string
}

// loadFile returns the project file selected by --file. Without the flag
// the default names are tried in order. When required is false a missing
// default file yields an empty project using the default workflow.
func (c *CLI) loadFile(required bool) (*config.File, error) {
	if c.file != "" {
		return config.Load(c.file)
	}
	for _, name := range []string{config.DefaultFile, "depot.yaml", "depot.yml"} {
		if _, err := os.Stat(name); err == nil {
			return config.Load(name)
		}
	}
	if required {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no %s found in the current directory", config.DefaultFile)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "get working directory")
	}
	return &config.File{Dir: dir}, nil
}

// open loads the project file and builds its workflow and service.
func (c *CLI) open(ctx context.Context, required bool) (*project, error) {
	f, err := c.loadFile(required)
	if err != nil {
		return nil, err
	}
	listings, err := f.OpenListings(ctx)
	if err != nil {
		return nil, err
	}

	p := &project{file: f, listings: listings, metricsFile: c.metricsFile}
	var hooks observability.Hooks
	if c.metricsFile != "" {
		p.registry = prometheus.NewRegistry()
		hooks = observability.NewMetrics(p.registry).Hooks()
	}

	env := workflow.Env{Logger: c.Logger, Hooks: hooks.WithDefaults(), Cache: listings}
	wf, err := backend.NewRegistry().BuildWorkflow(f.WorkflowSpec(), env)
	if err != nil {
		listings.Close()
		return nil, err
	}
	p.wf = wf
	p.svc = deps.NewService(deps.Options{Logger: c.Logger, Hooks: hooks})
	return p, nil
}

// Close releases the listing cache and writes the metrics file if one was
// requested.
func (p *project) Close() error {
	err := p.listings.Close()
	if p.registry != nil {
		if werr := prometheus.WriteToTextfile(p.metricsFile, p.registry); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// targetSet returns the dependency set a command works on: the coordinates
// given as args, or the named set of the project file.
func (p *project) targetSet(args []string, setName string) (*artifact.Set, error) {
	if len(args) == 0 {
		return p.file.Set(setName)
	}
	return parseCoordinates(args)
}

// parseCoordinates builds a set holding every coordinate in args. Every
// malformed coordinate is reported.
func parseCoordinates(args []string) (*artifact.Set, error) {
	var errs errors.List
	set := artifact.NewSet()
	for _, a := range args {
		ref, err := artifact.ParseRef(a)
		if err != nil {
			errs.Add(errors.UserMessage(err))
			continue
		}
		set.Add(argsGroup, ref)
	}
	if err := errs.Err(errors.ErrCodeInvalidInput, "invalid coordinates"); err != nil {
		return nil, err
	}
	return set, nil
}
