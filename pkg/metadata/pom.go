package metadata

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/version"
)

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	Version    *string `xml:"version"`
	Type       *string `xml:"type"`
	Scope      string  `xml:"scope"`
}

// FromPOM translates the root-level dependencies of a POM. Dependencies
// nested in other sections (dependencyManagement, profiles) are ignored.
func FromPOM(r io.Reader) (*artifact.Metadata, error) {
	var pom pomProject
	if err := xml.NewDecoder(r).Decode(&pom); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "parse POM")
	}

	md := &artifact.Metadata{Compatibility: version.CompatMajor, Dependencies: artifact.NewSet()}
	for _, dep := range pom.Dependencies {
		ref := artifact.NewRef(
			strings.TrimSpace(dep.GroupID),
			strings.TrimSpace(dep.ArtifactID),
			strings.TrimSpace(dep.ArtifactID),
			valueOr(dep.Version, artifact.Latest),
			valueOr(dep.Type, "jar"),
		)
		md.Dependencies.Add(groupType(dep.Scope), ref)
	}
	return md, nil
}

// ReadPOM translates the POM at path.
func ReadPOM(path string) (*artifact.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return FromPOM(f)
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	if s := strings.TrimSpace(*v); s != "" {
		return s
	}
	return def
}

func groupType(scope string) string {
	switch strings.TrimSpace(scope) {
	case "test":
		return artifact.GroupTestRun
	case "provided":
		return artifact.GroupCompileOnly
	case "":
		return artifact.GroupRun
	default:
		return strings.TrimSpace(scope)
	}
}
