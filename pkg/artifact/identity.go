package artifact

import (
	"github.com/matzehuels/depot/pkg/errors"
)

// Identity names an artifact family across all of its versions.
// Two identities are equal when all four fields are equal, so Identity can
// be used directly as a map or graph key.
type Identity struct {
	Group   string // Dotted organisation name (e.g. "org.example")
	Project string // Project producing the artifact
	Name    string // Artifact name within the project
	Type    string // File type (e.g. "jar")
}

// NewIdentity builds an Identity, defaulting a blank project or name to the
// other one.
func NewIdentity(group, project, name, typ string) Identity {
	if name == "" {
		name = project
	}
	if project == "" {
		project = name
	}
	return Identity{Group: group, Project: project, Name: name, Type: typ}
}

// Validate checks that the identity can be mapped onto a storage path.
// Project and name may each be blank but not both.
func (id Identity) Validate() error {
	if id.Project == "" && id.Name == "" {
		return errors.New(errors.ErrCodeInvalidIdentity, "artifact %s must have a project or a name", id)
	}
	if err := errors.ValidateGroup(id.Group); err != nil {
		return err
	}
	for _, f := range []struct{ field, value string }{
		{"project", id.Project},
		{"name", id.Name},
		{"type", id.Type},
	} {
		if err := errors.ValidateSegment(f.field, f.value); err != nil {
			return err
		}
	}
	return nil
}

// String returns "group:project:name:type".
func (id Identity) String() string {
	return id.Group + ":" + id.Project + ":" + id.Name + ":" + id.Type
}

// ArtifactName returns the name used in item file names, falling back to
// the project when the name is blank.
func (id Identity) ArtifactName() string {
	if id.Name != "" {
		return id.Name
	}
	return id.Project
}

// ProjectName returns the project used in storage paths, falling back to
// the name when the project is blank.
func (id Identity) ProjectName() string {
	if id.Project != "" {
		return id.Project
	}
	return id.Name
}
