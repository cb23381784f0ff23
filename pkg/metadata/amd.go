package metadata

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
)

type amdDocument struct {
	XMLName       xml.Name         `xml:"artifact-meta-data"`
	Compatibility string           `xml:"compatibility,attr,omitempty"`
	CompatType    string           `xml:"compatType,attr,omitempty"`
	Dependencies  *amdDependencies `xml:"dependencies"`
	Unknown       []unknownElement `xml:",any"`
}

type amdDependencies struct {
	Groups  []amdGroup       `xml:"artifact-group"`
	Unknown []unknownElement `xml:",any"`
}

type amdGroup struct {
	Type      string           `xml:"type,attr"`
	Artifacts []amdArtifact    `xml:"artifact"`
	Unknown   []unknownElement `xml:",any"`
}

type amdArtifact struct {
	Group   string           `xml:"group,attr"`
	Project string           `xml:"project,attr"`
	Name    string           `xml:"name,attr"`
	Version string           `xml:"version,attr"`
	Type    string           `xml:"type,attr"`
	Unknown []unknownElement `xml:",any"`
}

type unknownElement struct {
	XMLName xml.Name
}

// Decode reads a descriptor. Unknown elements, groups without a type and
// artifacts without a version are reported as INVALID_METADATA errors.
func Decode(r io.Reader) (*artifact.Metadata, error) {
	var doc amdDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "parse artifact metadata")
	}
	if err := checkUnknown(doc.Unknown); err != nil {
		return nil, err
	}

	md := &artifact.Metadata{Compatibility: doc.Compatibility, Dependencies: artifact.NewSet()}
	if md.Compatibility == "" {
		md.Compatibility = doc.CompatType
	}
	if doc.Dependencies == nil {
		return md, nil
	}
	if err := checkUnknown(doc.Dependencies.Unknown); err != nil {
		return nil, err
	}

	for _, g := range doc.Dependencies.Groups {
		if err := checkUnknown(g.Unknown); err != nil {
			return nil, err
		}
		if g.Type == "" {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "artifact-group without a type")
		}
		group := md.Dependencies.Group(g.Type)
		for _, a := range g.Artifacts {
			if err := checkUnknown(a.Unknown); err != nil {
				return nil, err
			}
			ref := artifact.NewRef(a.Group, a.Project, a.Name, a.Version, a.Type)
			if ref.Type == "" {
				ref.Type = "jar"
			}
			if err := ref.Validate(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "dependency in group %q", g.Type)
			}
			group.Refs = append(group.Refs, ref)
		}
	}
	return md, nil
}

func checkUnknown(els []unknownElement) error {
	if len(els) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidMetadata, "unknown element <%s>", els[0].XMLName.Local)
}

// Encode writes md as an indented descriptor.
func Encode(w io.Writer, md *artifact.Metadata) error {
	doc := amdDocument{Compatibility: md.Compatibility}
	if !md.Dependencies.Empty() {
		doc.Dependencies = &amdDependencies{}
		for _, g := range md.Dependencies.Groups {
			if len(g.Refs) == 0 {
				continue
			}
			ag := amdGroup{Type: g.Type}
			for _, r := range g.Refs {
				ag.Artifacts = append(ag.Artifacts, amdArtifact{
					Group:   r.Group,
					Project: r.Project,
					Name:    r.Name,
					Version: r.Version,
					Type:    r.Type,
				})
			}
			doc.Dependencies.Groups = append(doc.Dependencies.Groups, ag)
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded descriptor.
func Marshal(md *artifact.Metadata) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, md); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile decodes the descriptor at path.
func ReadFile(path string) (*artifact.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile encodes md to path, replacing any existing file.
func WriteFile(path string, md *artifact.Metadata) error {
	data, err := Marshal(md)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
