package deps

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/workflow"
)

// builder expands a dependency set into an artifact graph. One builder
// serves one pass.
type builder struct {
	wf         *workflow.Workflow
	session    *workflow.Session
	logger     *log.Logger
	maxDepth   int
	transitive bool

	g        *artifact.Graph
	expanded map[artifact.Key]bool
	stack    []artifact.Identity
	cycles   errors.List
}

func newBuilder(wf *workflow.Workflow, session *workflow.Session, opts Options, transitive bool) *builder {
	return &builder{
		wf:         wf,
		session:    session,
		logger:     opts.Logger,
		maxDepth:   opts.MaxDepth,
		transitive: transitive,
		g:          artifact.NewGraph(),
		expanded:   make(map[artifact.Key]bool),
	}
}

// build seeds the project root, expands set below it and attaches the
// graph to set. Cycles do not stop the build; they are reported together
// once the graph is complete, and the graph is then returned unattached.
func (b *builder) build(ctx context.Context, set *artifact.Set) (*artifact.Graph, error) {
	root := artifact.ProjectRef()
	b.g.AddNode(root.Identity)
	b.stack = append(b.stack, root.Identity)
	if err := b.expand(ctx, root, set); err != nil {
		return nil, err
	}
	if err := b.cycles.Err(errors.ErrCodeCyclicDependency, "dependency cycles detected"); err != nil {
		return b.g, err
	}
	set.SetGraph(b.g)
	b.logger.Debug("graph built", "nodes", b.g.NodeCount(), "links", b.g.LinkCount())
	return b.g, nil
}

func (b *builder) expand(ctx context.Context, origin artifact.Ref, set *artifact.Set) error {
	if set == nil {
		return nil
	}
	if len(b.stack) > b.maxDepth {
		return errors.New(errors.ErrCodeInvalidInput, "dependency depth of %s exceeds %d", origin, b.maxDepth)
	}
	var publish workflow.Publisher
	if b.wf.Publish != nil {
		publish = b.wf.Publish
	}

	for _, g := range set.Groups {
		var unresolved errors.List
		if err := resolveGroup(ctx, g, b.wf.Fetch, &unresolved); err != nil {
			return err
		}
		if err := unresolved.Err(errors.ErrCodeVersionNotFound, "unable to resolve symbolic versions"); err != nil {
			return err
		}

		for _, dep := range g.Refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.g.AddNode(dep.Identity)
			md, err := b.wf.Fetch.FetchMetaData(ctx, dep, publish, b.session)
			if err != nil {
				return err
			}
			compat := ""
			if md != nil {
				compat = md.Compatibility
			}
			b.g.AddLink(origin.Identity, dep.Identity, artifact.Link{
				DependentVersion:             origin.Version,
				DependencyVersion:            dep.Version,
				DependencyIntegrationVersion: dep.IntegrationVersion,
				GroupType:                    g.Type,
				Compatibility:                compat,
			})

			if i := slices.Index(b.stack, dep.Identity); i >= 0 {
				b.cycles.Addf("cyclic dependency: %s", cyclePath(b.stack[i:], dep.Identity))
				continue
			}
			if b.expanded[dep.Key()] {
				continue
			}
			b.expanded[dep.Key()] = true
			if md == nil || md.Dependencies.Empty() || !b.transitive {
				continue
			}

			b.stack = append(b.stack, dep.Identity)
			err = b.expand(ctx, dep, md.Dependencies)
			b.stack = b.stack[:len(b.stack)-1]
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func cyclePath(stack []artifact.Identity, closing artifact.Identity) string {
	parts := make([]string, 0, len(stack)+1)
	for _, id := range stack {
		parts = append(parts, "["+id.String()+"]")
	}
	parts = append(parts, "["+closing.String()+"]")
	return strings.Join(parts, " -> ")
}
