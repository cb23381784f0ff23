package deps

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/observability"
	"github.com/matzehuels/depot/pkg/version"
)

// CompatibilityResolver reconciles conflicting version requests in an
// artifact graph. Version decisions are delegated to the comparators of a
// [version.Registry].
type CompatibilityResolver struct {
	comparators *version.Registry
	logger      *log.Logger
	hooks       observability.ResolutionHooks
}

// NewCompatibilityResolver creates a resolver from opts.
func NewCompatibilityResolver(opts Options) *CompatibilityResolver {
	opts = opts.WithDefaults()
	return &CompatibilityResolver{
		comparators: opts.Comparators,
		logger:      opts.Logger,
		hooks:       opts.Hooks.Resolution,
	}
}

// Reconcile checks and rewrites g so that every artifact is requested in a
// single version. Only links whose group type is listed in groupTypes are
// considered; an empty list selects every group.
//
// Two passes run over the nodes in insertion order. The first checks that
// all requests of an artifact agree on its compatibility tag. The second
// folds the requested versions with the comparator of that tag; when the
// versions reconcile, every inbound link is rewritten to the winner, the
// outbound links contributed by losing versions are removed and artifacts
// only those links required are pruned. Problems are
// collected; reconciling an already reconciled graph changes nothing.
func (r *CompatibilityResolver) Reconcile(ctx context.Context, g *artifact.Graph, groupTypes []string) *errors.List {
	var errs errors.List
	for _, id := range g.Nodes() {
		r.checkTags(ctx, g, id, groupTypes, &errs)
	}
	for _, id := range g.Nodes() {
		r.reconcileNode(ctx, g, id, groupTypes, &errs)
	}
	return &errs
}

func inScope(groupTypes []string, l artifact.Link) bool {
	return len(groupTypes) == 0 || slices.Contains(groupTypes, l.GroupType)
}

func (r *CompatibilityResolver) checkTags(ctx context.Context, g *artifact.Graph, id artifact.Identity, groupTypes []string, errs *errors.List) {
	var first *artifact.Link
	for _, in := range g.Inbound(id) {
		l := in.Value
		if !inScope(groupTypes, l) || l.Compatibility == "" {
			continue
		}
		if first == nil {
			first = &l
			continue
		}
		if l.Compatibility != first.Compatibility {
			r.conflict(ctx, errs, id, fmt.Sprintf(
				"artifact [%s] has two different compatibility types: [%s] and [%s]\n%s",
				id, first.Compatibility, l.Compatibility, pathReport(g, id)))
			return
		}
	}
}

func (r *CompatibilityResolver) reconcileNode(ctx context.Context, g *artifact.Graph, id artifact.Identity, groupTypes []string, errs *errors.List) {
	inbound := g.Inbound(id)
	if len(inbound) <= 1 {
		return
	}
	tag := ""
	for _, in := range inbound {
		if inScope(groupTypes, in.Value) && in.Value.Compatibility != "" {
			tag = in.Value.Compatibility
			break
		}
	}
	cmp, ok := r.comparators.Lookup(tag)
	if !ok {
		r.conflict(ctx, errs, id, fmt.Sprintf("artifact [%s] uses unknown compatibility type [%s] (known: %v)",
			id, tag, r.comparators.Tags()))
		return
	}

	var (
		best     *artifact.Link
		distinct bool
		failed   bool
	)
	for _, in := range inbound {
		l := in.Value
		if !inScope(groupTypes, l) {
			continue
		}
		if best == nil {
			best = &l
			continue
		}
		if l.DependencyVersion == best.DependencyVersion {
			continue
		}
		distinct = true
		winner, ok := cmp.Best(best.DependencyVersion, l.DependencyVersion)
		if !ok {
			failed = true
			r.conflict(ctx, errs, id, incompatibleReport(g, id, *best, l))
			continue
		}
		if winner == l.DependencyVersion {
			best = &l
		}
	}
	if !distinct || failed {
		return
	}

	r.logger.Debug("reconciled versions", "artifact", id, "version", best.DependencyVersion, "compatibility", tag)
	for _, in := range inbound {
		g.ReplaceLink(in.Origin, in.Destination, in.Value, artifact.Link{
			DependentVersion:             in.Value.DependentVersion,
			DependencyVersion:            best.DependencyVersion,
			DependencyIntegrationVersion: best.DependencyIntegrationVersion,
			GroupType:                    in.Value.GroupType,
			Compatibility:                tag,
		})
	}
	var orphans []artifact.Identity
	for _, out := range g.Outbound(id) {
		if out.Value.DependentVersion != best.DependencyVersion {
			g.RemoveLink(out.Origin, out.Destination, out.Value)
			orphans = append(orphans, out.Destination)
		}
	}
	r.prune(g, orphans, errs)
}

// prune removes every node of orphans left without inbound links together
// with the part of the graph only it required.
func (r *CompatibilityResolver) prune(g *artifact.Graph, orphans []artifact.Identity, errs *errors.List) {
	for _, id := range orphans {
		if !g.Contains(id) || len(g.Inbound(id)) > 0 {
			continue
		}
		if err := g.Remove(id); err != nil {
			errs.Addf("unable to prune superseded artifact [%s]: %v", id, err)
			continue
		}
		r.logger.Debug("pruned superseded artifact", "artifact", id)
	}
}

func (r *CompatibilityResolver) conflict(ctx context.Context, errs *errors.List, id artifact.Identity, msg string) {
	errs.Add(msg)
	r.hooks.OnConflict(ctx, id.String())
}

func incompatibleReport(g *artifact.Graph, id artifact.Identity, a, b artifact.Link) string {
	return fmt.Sprintf("artifact [%s] not compatible with [%s]\n%s",
		a.Ref(id), b.Ref(id), pathReport(g, id))
}

// pathReport lists every path from the project root to id.
func pathReport(g *artifact.Graph, id artifact.Identity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "paths to artifact [%s] are:", id)
	paths := g.Paths(artifact.ProjectRoot, id)
	if len(paths) == 0 {
		b.WriteString("\n  inside this project")
		return b.String()
	}
	for _, p := range paths {
		hops := make([]string, 0, len(p))
		for _, n := range p {
			if n == artifact.ProjectRoot {
				continue
			}
			hops = append(hops, "["+n.String()+"]")
		}
		b.WriteString("\n  ")
		b.WriteString(strings.Join(hops, " -> "))
	}
	return b.String()
}
