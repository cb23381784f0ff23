package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/deps"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type graphOptions struct {
	resolveOptions
	format    string
	output    string
	detailed  bool
	reconcile bool
	exclude   []string
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph [coordinate...]",
		Short: "Render the dependency graph",
		Long: `Build the dependency graph of the project file, or the given coordinates, and
render it as Graphviz DOT or SVG. Nothing but metadata is fetched.

Artifacts requested in several versions are highlighted. With --reconcile the
versions are reconciled first and remaining conflicts are reported.`,
		Example: `  depot graph -o deps.svg --format svg
  depot graph --exclude org.junit:junit:junit:jar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.groups, "group", "g", nil, "group types to draw (default all)")
	cmd.Flags().StringVar(&opts.format, "format", formatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label links with versions and group types")
	cmd.Flags().BoolVar(&opts.reconcile, "reconcile", false, "reconcile versions before rendering")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "drop an artifact (group:project:name:type) and what only it needs")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, args []string, opts graphOptions) error {
	if opts.format != formatDOT && opts.format != formatSVG {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", opts.format)
	}
	ctx := cmd.Context()
	p, err := c.open(ctx, len(args) == 0)
	if err != nil {
		return err
	}
	defer p.Close()

	set, err := p.targetSet(args, opts.set)
	if err != nil {
		return err
	}
	g, err := p.svc.BuildGraph(ctx, set, p.wf, !opts.direct)
	if err != nil {
		return err
	}

	for _, s := range opts.exclude {
		id, err := parseIdentity(s)
		if err != nil {
			return err
		}
		if !g.Contains(id) {
			printWarning("%s is not part of the graph", s)
			continue
		}
		if err := g.Remove(id); err != nil {
			return errors.Wrap(errors.ErrCodeCyclicGraph, err, "exclude %s: %v", s, err)
		}
	}

	if opts.reconcile {
		resolver := deps.NewCompatibilityResolver(deps.Options{Logger: c.Logger})
		if errs := resolver.Reconcile(ctx, g, opts.groups); !errs.Empty() {
			for _, msg := range errs.Items() {
				printWarning("%s", msg)
			}
		}
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, GroupTypes: opts.groups})
	out := []byte(dot)
	if opts.format == formatSVG {
		if out, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Wrote %d nodes, %d links", g.NodeCount(), g.LinkCount())
	printDetail("%s", opts.output)
	return nil
}

// parseIdentity parses "group:project:name:type" as printed in graphs.
func parseIdentity(s string) (artifact.Identity, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return artifact.Identity{}, errors.New(errors.ErrCodeInvalidIdentity, "invalid identity %q (want group:project:name:type)", s)
	}
	id := artifact.NewIdentity(parts[0], parts[1], parts[2], parts[3])
	if err := id.Validate(); err != nil {
		return artifact.Identity{}, err
	}
	return id, nil
}
