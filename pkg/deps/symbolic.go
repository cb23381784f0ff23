package deps

import (
	"context"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/workflow"
)

// ResolveVersions replaces the symbolic versions of every reference in set
// with the concrete versions reported by chain. References are rewritten in
// place, so resolving an already resolved set changes nothing.
//
// A "{latest}" reference is bound to the highest released version first;
// if the result names an integration base it is then bound to a build.
// Every unresolvable reference is reported, not just the first.
func ResolveVersions(ctx context.Context, set *artifact.Set, chain *workflow.FetchChain) error {
	if set == nil {
		return nil
	}
	var errs errors.List
	for _, g := range set.Groups {
		if err := resolveGroup(ctx, g, chain, &errs); err != nil {
			return err
		}
	}
	return errs.Err(errors.ErrCodeVersionNotFound, "unable to resolve symbolic versions")
}

func resolveGroup(ctx context.Context, g *artifact.Group, chain *workflow.FetchChain, errs *errors.List) error {
	for i := range g.Refs {
		ref := &g.Refs[i]
		if ref.IsLatest() {
			v, err := chain.DetermineVersion(ctx, *ref)
			if err != nil {
				return err
			}
			if v == "" {
				errs.Addf("artifact [%s] is set to the latest version, but no versions exist", ref)
				continue
			}
			ref.Version = v
		}
		if ref.IsIntegration() && ref.IntegrationVersion == "" {
			v, err := chain.DetermineVersion(ctx, *ref)
			if err != nil {
				return err
			}
			if v == "" {
				errs.Addf("artifact [%s] is set to an integration build, but no builds exist", ref)
				continue
			}
			ref.IntegrationVersion = v
		}
	}
	return nil
}
