package artifact

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/depot/pkg/errors"
)

const (
	// Latest is the symbolic version that resolves to the highest released
	// version available in any backend.
	Latest = "{latest}"

	// IntegrationSuffix marks a version as "the newest integration build of
	// this base version" (e.g. "1.0-{integration}").
	IntegrationSuffix = "-{integration}"

	// IntegrationMarker separates a base version from the build id of an
	// integration build (e.g. "1.0-IB20240101120000000").
	IntegrationMarker = "-IB"
)

// Item name suffixes shared by every backend.
const (
	MetaDataSuffix = ".amd"
	NegativeSuffix = ".neg"
	ChecksumSuffix = ".md5"
	SourceSuffix   = "-src"
	POMType        = "pom"
)

// Ref is a reference to one version of an artifact.
type Ref struct {
	Identity

	// Version is a literal version, [Latest], or a base version ending in
	// [IntegrationSuffix].
	Version string

	// IntegrationVersion is the resolved build (e.g. "1.0-IB12") of an
	// integration reference. Empty until resolved.
	IntegrationVersion string

	// Compatibility selects the version comparison policy used when several
	// versions of this identity are requested.
	Compatibility string
}

// NewRef builds a Ref from its coordinates. Blank project or name default
// to the other.
func NewRef(group, project, name, version, typ string) Ref {
	return Ref{Identity: NewIdentity(group, project, name, typ), Version: version}
}

// Key identifies a Ref exactly. Compatibility is informational and not part
// of the key.
type Key struct {
	Identity
	Version            string
	IntegrationVersion string
}

// Key returns the exact identity of the reference.
func (r Ref) Key() Key {
	return Key{Identity: r.Identity, Version: r.Version, IntegrationVersion: r.IntegrationVersion}
}

// IsLatest reports whether the version is the [Latest] token.
func (r Ref) IsLatest() bool { return r.Version == Latest }

// IsIntegration reports whether the version requests an integration build.
func (r Ref) IsIntegration() bool { return strings.HasSuffix(r.Version, IntegrationSuffix) }

// IsSymbolic reports whether the version must be resolved before fetching.
func (r Ref) IsSymbolic() bool {
	return r.IsLatest() || (r.IsIntegration() && r.IntegrationVersion == "")
}

// BaseVersion returns the version without the integration suffix.
func (r Ref) BaseVersion() string { return strings.TrimSuffix(r.Version, IntegrationSuffix) }

// Validate checks the identity and version for use in storage paths.
func (r Ref) Validate() error {
	if err := r.Identity.Validate(); err != nil {
		return err
	}
	if r.Version == "" {
		return errors.New(errors.ErrCodeInvalidIdentity, "artifact %s has no version", r.Identity)
	}
	if err := errors.ValidateSegment("version", r.Version); err != nil {
		return err
	}
	return errors.ValidateSegment("integration version", r.IntegrationVersion)
}

// String returns "group:project:name-version.type".
func (r Ref) String() string {
	return r.Group + ":" + r.ProjectName() + ":" + r.prefix() + "." + r.Type
}

// EffectiveVersion returns the resolved integration build for integration
// references, otherwise the version.
func (r Ref) EffectiveVersion() string {
	if r.IsIntegration() && r.IntegrationVersion != "" {
		return r.IntegrationVersion
	}
	return r.Version
}

func (r Ref) prefix() string {
	return r.ArtifactName() + "-" + r.EffectiveVersion()
}

// FileItem returns the primary item name "<name>-<version>.<type>".
func (r Ref) FileItem() string { return r.prefix() + "." + r.Type }

// MetaDataItem returns the metadata item name.
func (r Ref) MetaDataItem() string { return r.FileItem() + MetaDataSuffix }

// NegativeMetaDataItem returns the marker recording a metadata miss.
func (r Ref) NegativeMetaDataItem() string { return r.MetaDataItem() + NegativeSuffix }

// SourceItem returns the source companion item name.
func (r Ref) SourceItem() string { return r.prefix() + SourceSuffix + "." + r.Type }

// POMItem returns the foreign manifest item name translated when native
// metadata is absent.
func (r Ref) POMItem() string { return r.prefix() + "." + POMType }

// ChecksumItem returns the sidecar name of item.
func ChecksumItem(item string) string { return item + ChecksumSuffix }

// NegativeItem returns the marker name recording a miss of item.
func NegativeItem(item string) string { return item + NegativeSuffix }

// ProjectPath returns the slash-separated relative directory holding every
// version of the artifact: "<group as path>/<project>".
func (r Ref) ProjectPath() string {
	if r.Group == "" {
		return r.ProjectName()
	}
	return strings.ReplaceAll(r.Group, ".", "/") + "/" + r.ProjectName()
}

// VersionPath returns the slash-separated relative directory of this
// version. Integration references use the symbolic version so that every
// build of one base lives in the same directory.
func (r Ref) VersionPath() string { return r.ProjectPath() + "/" + r.Version }

// ItemPath returns the relative path of item.
func (r Ref) ItemPath(item string) string { return r.VersionPath() + "/" + item }

// ProjectDir returns [Ref.ProjectPath] below root on the local filesystem.
func (r Ref) ProjectDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(r.ProjectPath()))
}

// Dir returns [Ref.VersionPath] below root on the local filesystem.
func (r Ref) Dir(root string) string {
	return filepath.Join(root, filepath.FromSlash(r.VersionPath()))
}

// Path returns the local path of item below root.
func (r Ref) Path(root, item string) string {
	return filepath.Join(r.Dir(root), item)
}

// WithVersion returns a copy of r with a different version and no resolved
// integration build.
func (r Ref) WithVersion(version string) Ref {
	r.Version = version
	r.IntegrationVersion = ""
	return r
}

// DefaultType is the type assumed by [ParseRef] when a coordinate omits it.
const DefaultType = "jar"

// ParseRef parses a coordinate in one of the forms
//
//	group:project:version
//	group:project:version:type
//	group:project:name:version:type
//
// and validates the result.
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, ":")
	var r Ref
	switch len(parts) {
	case 3:
		r = NewRef(parts[0], parts[1], "", parts[2], DefaultType)
	case 4:
		r = NewRef(parts[0], parts[1], "", parts[2], parts[3])
	case 5:
		r = NewRef(parts[0], parts[1], parts[2], parts[3], parts[4])
	default:
		return Ref{}, errors.New(errors.ErrCodeInvalidIdentity,
			"invalid coordinate %q (want group:project[:name]:version[:type])", s)
	}
	if err := r.Validate(); err != nil {
		return Ref{}, err
	}
	return r, nil
}
