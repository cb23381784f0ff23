package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/deps"
)

// resolveOptions holds flags shared by the commands that walk a set.
type resolveOptions struct {
	set    string
	groups []string
	direct bool
}

func (o *resolveOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.set, "set", "", "dependency set of the project file (default \"default\")")
	cmd.Flags().BoolVar(&o.direct, "direct", false, "only direct dependencies")
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve [coordinate...]",
		Short: "Resolve dependencies and fetch their files",
		Long: `Resolve the dependencies of the project file, or the given coordinates, into one
version per artifact and fetch every file into the local cache.

Coordinates have the form group:project:version[:type] or
group:project:name:version:type. Versions may be "{latest}" or
"<base>-{integration}".`,
		Example: `  depot resolve
  depot resolve --group compile --group run
  depot resolve org.acme:util:{latest}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.groups, "group", "g", nil, "group types to resolve (default all)")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, args []string, opts resolveOptions) error {
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
	if set.Empty() {
		printInfo("No dependencies declared")
		return nil
	}

	prog := newProgress(c.Logger)
	spin := newSpinner("Resolving dependencies...", c.Logger.GetLevel() <= LogDebug)
	spin.Start(ctx)
	found, err := p.svc.Resolve(ctx, set, p.wf, opts.groups, !opts.direct)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("resolved %d artifacts", len(found)))

	printResolved(found)
	if p.svc.HasIntegrations(set) {
		printWarning("Resolution includes integration builds")
	}
	return nil
}

// printResolved prints every resolved artifact in a stable order.
func printResolved(found map[artifact.Ref]string) {
	refs := make([]artifact.Ref, 0, len(found))
	for r := range found {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	printSuccess("Resolved %d artifacts", len(refs))
	for _, r := range refs {
		printArtifact(r.String(), found[r])
	}
}

// printListener reports published and cleaned artifacts as they happen.
type printListener struct {
	deps.NoopListener
}

func (printListener) ArtifactPublished(ref artifact.Ref) {
	printSuccess("Published %s", ref)
}

func (printListener) ArtifactCleaned(ref artifact.Ref) {
	printSuccess("Cleaned %s", ref)
}
