package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/checksum"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/metadata"
	"github.com/matzehuels/depot/pkg/workflow"
)

// Project is the artifact family a build publishes into.
type Project struct {
	Group   string
	Name    string
	Version string

	// Dependencies holds the named dependency sets publications refer to.
	Dependencies map[string]*artifact.Set
}

// Publication is one file produced by a build.
type Publication struct {
	Name          string // Artifact name; blank uses the project name
	Type          string // File type (e.g. "jar")
	File          string // Local path of the built file
	Compatibility string // Compatibility tag written to the metadata
	Dependencies  string // Key into Project.Dependencies; blank for none
}

// Publish stores every publication of project through wf.Publish and
// returns the published path of each primary file.
//
// A release publication replaces any integration builds of the same base
// version. An integration publication is stored under
// "<version>-{integration}" with a build id derived from the current time.
// Every published item gets an ".md5" sidecar, the metadata descriptor is
// written from the publication's dependency set, and a "<base>-src.<type>"
// file next to the primary file is published as its source companion.
func (s *Service) Publish(ctx context.Context, project Project, pubs []Publication, wf *workflow.Workflow, integration bool, listeners ...Listener) (map[Publication]string, error) {
	if wf == nil || wf.Publish == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "workflow has no publish chain")
	}
	if err := validatePublications(project, pubs); err != nil {
		return nil, err
	}

	version := project.Version
	build := ""
	if integration {
		build = project.Version + artifact.IntegrationMarker + strings.ReplaceAll(s.opts.Now().Format("20060102150405.000"), ".", "")
		version = project.Version + artifact.IntegrationSuffix
	}

	tmp, err := os.MkdirTemp("", "depot-publish-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePermanentIO, err, "create staging directory")
	}
	defer os.RemoveAll(tmp)

	var errs errors.List
	out := make(map[Publication]string, len(pubs))
	for _, pub := range pubs {
		ref := artifact.NewRef(project.Group, project.Name, pub.Name, version, pub.Type)
		ref.IntegrationVersion = build
		ref.Compatibility = pub.Compatibility

		if !integration {
			if err := wf.Publish.DeleteIntegrationBuilds(ctx, ref); err != nil {
				errs.AddErr(err)
			}
		}
		path, err := s.publishOne(ctx, wf.Publish, tmp, ref, pub, project.Dependencies[pub.Dependencies])
		if err != nil {
			errs.AddErr(err)
			continue
		}
		out[pub] = path
		s.opts.Logger.Info("published", "artifact", ref)
		notify(s.opts.Logger, listeners, func(l Listener) { l.ArtifactPublished(ref) })
	}
	if err := errs.Err(errors.ErrCodePublish, "unable to publish "+project.Name); err != nil {
		return out, err
	}
	return out, nil
}

func validatePublications(project Project, pubs []Publication) error {
	var errs errors.List
	if project.Version == "" {
		errs.Addf("project %s has no version", project.Name)
	}
	for _, pub := range pubs {
		ref := artifact.NewRef(project.Group, project.Name, pub.Name, project.Version, pub.Type)
		if err := ref.Validate(); err != nil {
			errs.AddErr(err)
			continue
		}
		if pub.Dependencies != "" && project.Dependencies[pub.Dependencies] == nil {
			errs.Addf("publication %s refers to unknown dependencies %q", ref, pub.Dependencies)
		}
		info, err := os.Stat(pub.File)
		switch {
		case err != nil:
			errs.Addf("publication %s: file %s does not exist", ref, pub.File)
		case info.IsDir():
			errs.Addf("publication %s: %s is a directory", ref, pub.File)
		}
	}
	return errs.Err(errors.ErrCodeInvalidInput, "invalid publications")
}

func (s *Service) publishOne(ctx context.Context, chain *workflow.PublishChain, tmp string, ref artifact.Ref, pub Publication, deps *artifact.Set) (string, error) {
	path, err := publishWithChecksum(ctx, chain, tmp, ref, ref.FileItem(), pub.File)
	if err != nil {
		return "", err
	}

	amd := filepath.Join(tmp, ref.MetaDataItem())
	if err := metadata.WriteFile(amd, &artifact.Metadata{Compatibility: pub.Compatibility, Dependencies: deps}); err != nil {
		return "", errors.Wrap(errors.ErrCodePermanentIO, err, "write metadata of %s", ref)
	}
	if _, err := publishWithChecksum(ctx, chain, tmp, ref, ref.MetaDataItem(), amd); err != nil {
		return "", err
	}

	if src, ok := sourceCompanion(pub.File, pub.Type); ok {
		if _, err := publishWithChecksum(ctx, chain, tmp, ref, ref.SourceItem(), src); err != nil {
			return "", err
		}
	}
	return path, nil
}

func publishWithChecksum(ctx context.Context, chain *workflow.PublishChain, tmp string, ref artifact.Ref, item, file string) (string, error) {
	path, err := chain.Publish(ctx, ref, item, file)
	if err != nil {
		return "", err
	}
	sidecar := filepath.Join(tmp, artifact.ChecksumItem(item))
	if err := checksum.WriteSidecar(file, sidecar, item); err != nil {
		return "", errors.Wrap(errors.ErrCodePermanentIO, err, "checksum %s", item)
	}
	if _, err := chain.Publish(ctx, ref, artifact.ChecksumItem(item), sidecar); err != nil {
		return "", err
	}
	return path, nil
}

// sourceCompanion returns "<base>-src.<type>" next to file when it exists.
func sourceCompanion(file, typ string) (string, bool) {
	ext := "." + typ
	if !strings.HasSuffix(file, ext) {
		return "", false
	}
	src := strings.TrimSuffix(file, ext) + artifact.SourceSuffix + ext
	info, err := os.Stat(src)
	if err != nil || info.IsDir() {
		return "", false
	}
	return src, true
}

// Delete removes every version of every artifact reachable from set, as
// recorded in its graph: metadata, negative markers, primary and source
// items together with their sidecars. The graph attached to set is reused;
// otherwise it is built first.
func (s *Service) Delete(ctx context.Context, set *artifact.Set, wf *workflow.Workflow, transitive bool, listeners ...Listener) error {
	if wf == nil || wf.Publish == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "workflow has no publish chain")
	}
	g := set.Graph()
	if g == nil {
		var err error
		if g, err = s.BuildGraph(ctx, set, wf, transitive); err != nil {
			return err
		}
	}

	var errs errors.List
	for _, id := range g.Nodes() {
		for _, ref := range requested(g, id) {
			deleted, err := deleteItems(ctx, wf.Publish, ref)
			if err != nil {
				errs.Addf("error while cleaning artifact [%s]: %s", ref, errors.UserMessage(err))
			}
			if deleted {
				s.opts.Logger.Info("cleaned", "artifact", ref)
				notify(s.opts.Logger, listeners, func(l Listener) { l.ArtifactCleaned(ref) })
			}
		}
	}
	return errs.Err(errors.ErrCodeDelete, "unable to clean dependencies")
}

func deleteItems(ctx context.Context, chain *workflow.PublishChain, ref artifact.Ref) (bool, error) {
	var items []string
	for _, item := range []string{
		ref.MetaDataItem(),
		ref.NegativeMetaDataItem(),
		ref.FileItem(),
		artifact.NegativeItem(ref.FileItem()),
		ref.SourceItem(),
		artifact.NegativeItem(ref.SourceItem()),
	} {
		items = append(items, item, artifact.ChecksumItem(item))
	}
	removed := false
	for _, item := range items {
		deleted, err := chain.Delete(ctx, ref, item)
		if err != nil {
			return removed, err
		}
		removed = removed || deleted
	}
	return removed, nil
}
