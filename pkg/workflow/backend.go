package workflow

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/version"
)

// Publisher stores a local file as an item of ref and returns the local
// path of the stored copy, or "" when nothing local was produced.
// [PublishChain] implements Publisher; backends that download remote items
// use it to keep a local copy.
type Publisher interface {
	Publish(ctx context.Context, ref artifact.Ref, item, file string) (string, error)
}

// Backend is one storage location in a fetch or publish chain.
//
// Fetch returns the local path of item. Backends that download the item
// hand the download to publish (which may be nil) and return the path it
// reports. DetermineVersion resolves a symbolic version of ref and returns
// "" when the backend cannot answer.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, ref artifact.Ref, item string, publish Publisher) (string, error)
	DetermineVersion(ctx context.Context, ref artifact.Ref) (string, error)
	Publish(ctx context.Context, ref artifact.Ref, item, file string) (string, error)
	Delete(ctx context.Context, ref artifact.Ref, item string) (bool, error)
	DeleteIntegrationBuilds(ctx context.Context, ref artifact.Ref) error
}

// VersionFromListing resolves the symbolic version of ref against names
// listed by a backend: the project directory for [artifact.Latest], the
// integration version directory otherwise. It returns "" when nothing
// matches.
func VersionFromListing(ref artifact.Ref, names []string, logger *log.Logger) string {
	switch {
	case ref.IsLatest():
		v, _ := version.Latest(ref.ArtifactName(), ref.Type, names)
		return v
	case ref.IsIntegration():
		v, _ := version.BestIntegration(ref.ArtifactName(), ref.BaseVersion(), names, logger)
		return v
	default:
		return ref.Version
	}
}
