package deps

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/workflow"
)

// Service resolves, publishes and cleans artifacts through a
// [workflow.Workflow]. A Service holds no per-call state and may be shared;
// the sets handed to it must not be.
type Service struct {
	opts   Options
	compat *CompatibilityResolver
}

// NewService creates a service from opts.
func NewService(opts Options) *Service {
	opts = opts.WithDefaults()
	return &Service{opts: opts, compat: NewCompatibilityResolver(opts)}
}

// BuildGraph expands set into a new artifact graph and attaches it to set.
// Symbolic versions of set are rewritten in place. With transitive unset
// only the direct dependencies are added.
func (s *Service) BuildGraph(ctx context.Context, set *artifact.Set, wf *workflow.Workflow, transitive bool) (*artifact.Graph, error) {
	return s.buildGraph(ctx, set, wf, workflow.NewSession(), transitive)
}

func (s *Service) buildGraph(ctx context.Context, set *artifact.Set, wf *workflow.Workflow, session *workflow.Session, transitive bool) (*artifact.Graph, error) {
	if wf == nil || wf.Fetch == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "workflow has no fetch chain")
	}
	return newBuilder(wf, session, s.opts, transitive).build(ctx, set)
}

// Resolve locates one file per artifact required by set and returns their
// local paths keyed by the resolved reference.
//
// The graph attached to set is reused; otherwise it is built first.
// Version conflicts abort before anything is fetched. Only links of the
// listed group types are followed; an empty list follows every group.
// Missing artifacts are collected into a single error. Items every backend
// confirmed missing are published as negative markers once resolution
// succeeds.
func (s *Service) Resolve(ctx context.Context, set *artifact.Set, wf *workflow.Workflow, groupTypes []string, transitive bool, listeners ...Listener) (map[artifact.Ref]string, error) {
	session := workflow.NewSession()
	start := time.Now()
	s.opts.Hooks.Resolution.OnResolveStart(ctx, session.ID)
	logger := s.opts.Logger.With("session", session.ID)

	found, err := s.resolve(ctx, set, wf, session, groupTypes, transitive, listeners)
	s.opts.Hooks.Resolution.OnResolveComplete(ctx, session.ID, len(found), time.Since(start), err)
	if err != nil {
		logger.Debug("resolution failed", "err", err)
		return nil, err
	}
	logger.Debug("resolution complete", "artifacts", len(found), "duration", time.Since(start))
	return found, nil
}

func (s *Service) resolve(ctx context.Context, set *artifact.Set, wf *workflow.Workflow, session *workflow.Session, groupTypes []string, transitive bool, listeners []Listener) (map[artifact.Ref]string, error) {
	g := set.Graph()
	if g == nil {
		var err error
		if g, err = s.buildGraph(ctx, set, wf, session, transitive); err != nil {
			return nil, err
		}
	}
	if errs := s.compat.Reconcile(ctx, g, groupTypes); !errs.Empty() {
		return nil, errs.Err(errors.ErrCodeIncompatibleVersions, "artifact compatibility errors")
	}

	var (
		publish workflow.Publisher
		errs    errors.List
		found   = make(map[artifact.Ref]string)
	)
	if wf.Publish != nil {
		publish = wf.Publish
	}
	for _, id := range g.Nodes() {
		if id == artifact.ProjectRoot {
			continue
		}
		link, ok, err := singleVersion(g, id, groupTypes)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ref := link.Ref(id)
		path, err := wf.Fetch.FetchItem(ctx, ref, ref.FileItem(), publish, session)
		if err != nil {
			return nil, err
		}
		if path == "" {
			errs.Addf("unable to locate dependency [%s]", ref)
			continue
		}
		if _, err := wf.Fetch.FetchItem(ctx, ref, ref.SourceItem(), publish, session); err != nil {
			s.opts.Logger.Debug("source unavailable", "artifact", ref, "err", err)
		}
		found[ref] = path
		notify(s.opts.Logger, listeners, func(l Listener) { l.ArtifactFound(path, ref) })
	}
	if err := errs.Err(errors.ErrCodeArtifactNotFound, "unable to resolve dependencies"); err != nil {
		return nil, err
	}

	if wf.Publish != nil {
		for _, m := range session.Drain() {
			if m.MetaData() {
				wf.Publish.PublishNegativeMetaData(ctx, m.Ref)
			} else {
				wf.Publish.PublishNegative(ctx, m.Ref, m.Item)
			}
		}
	}
	return found, nil
}

// singleVersion returns the one in-scope inbound link of id. It reports
// false when id is not reached through any listed group and fails when
// reconciliation left more than one version behind.
func singleVersion(g *artifact.Graph, id artifact.Identity, groupTypes []string) (artifact.Link, bool, error) {
	var (
		best artifact.Link
		ok   bool
	)
	for _, in := range g.Inbound(id) {
		if !inScope(groupTypes, in.Value) {
			continue
		}
		if !ok {
			best, ok = in.Value, true
			continue
		}
		if in.Value.DependencyVersion != best.DependencyVersion {
			return artifact.Link{}, false, errors.New(errors.ErrCodeInternal,
				"unable to determine the single version of [%s]: %s and %s remain",
				id, best.DependencyVersion, in.Value.DependencyVersion)
		}
	}
	return best, ok, nil
}

// ResolveOne resolves ref and its dependencies as if it were the only
// "run" dependency of the project.
func (s *Service) ResolveOne(ctx context.Context, ref artifact.Ref, wf *workflow.Workflow, groupTypes []string, transitive bool, listeners ...Listener) (map[artifact.Ref]string, error) {
	set := artifact.NewSet()
	set.Add(artifact.GroupRun, ref)
	return s.Resolve(ctx, set, wf, groupTypes, transitive, listeners...)
}

// Dependencies resolves ref through its "run" dependencies and returns the
// direct dependencies recorded for it in the reconciled graph, grouped by
// type.
func (s *Service) Dependencies(ctx context.Context, ref artifact.Ref, wf *workflow.Workflow) (*artifact.Set, error) {
	set := artifact.NewSet()
	set.Add(artifact.GroupRun, ref)
	if _, err := s.Resolve(ctx, set, wf, []string{artifact.GroupRun}, true); err != nil {
		return nil, err
	}
	out := artifact.NewSet()
	for _, l := range set.Graph().Outbound(set.Groups[0].Refs[0].Identity) {
		out.Add(l.Value.GroupType, l.Value.Ref(l.Destination))
	}
	return out, nil
}

// HasIntegrations reports whether set requests any integration build.
func (s *Service) HasIntegrations(set *artifact.Set) bool {
	return set.HasIntegrations()
}

// requested returns the distinct references to id recorded on its inbound
// links, in first-seen order. Integration builds keep their resolved build.
func requested(g *artifact.Graph, id artifact.Identity) []artifact.Ref {
	var (
		out  []artifact.Ref
		keys []artifact.Key
	)
	for _, in := range g.Inbound(id) {
		r := in.Value.Ref(id)
		if slices.Contains(keys, r.Key()) {
			continue
		}
		keys = append(keys, r.Key())
		out = append(out, r)
	}
	return out
}
