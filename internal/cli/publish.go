package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depot/pkg/errors"
)

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	var integration bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the project's build results",
		Long: `Publish every publication of the project file through the publish backends.

A release replaces the integration builds of the same version. With
--integration the files are published as a new integration build of the
project version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer p.Close()

			proj, err := p.file.ProjectSpec()
			if err != nil {
				return err
			}
			pubs := p.file.PublicationSpecs()
			if len(pubs) == 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "project declares no publications")
			}

			prog := newProgress(c.Logger)
			published, err := p.svc.Publish(ctx, proj, pubs, p.wf, integration, printListener{})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("published %d files", len(published)))

			paths := make([]string, 0, len(published))
			for _, path := range published {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				printDetail("%s", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&integration, "integration", false, "publish an integration build")

	return cmd
}

// cleanCommand creates the clean command.
func (c *CLI) cleanCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "clean [coordinate...]",
		Short: "Delete dependencies from the publish backends",
		Long: `Delete every version of the dependencies of the project file, or the given
coordinates, from the publish backends: files, metadata, negative markers and
checksums.`,
		Example: `  depot clean
  depot clean --direct org.acme:util:1.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			return p.svc.Delete(ctx, set, p.wf, !opts.direct, printListener{})
		},
	}

	opts.register(cmd)

	return cmd
}
