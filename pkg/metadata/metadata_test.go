package metadata

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	md := &artifact.Metadata{Compatibility: "minor", Dependencies: artifact.NewSet()}
	md.Dependencies.Add(artifact.GroupRun,
		artifact.NewRef("org.example", "common", "common-core", "1.0", "jar"),
		artifact.NewRef("org.example", "util", "util", "2.0-{integration}", "zip"),
	)
	md.Dependencies.Add(artifact.GroupCompile, artifact.NewRef("org.other", "api", "api", "{latest}", "jar"))

	var buf bytes.Buffer
	if err := Encode(&buf, md); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if got.Compatibility != "minor" {
		t.Errorf("Compatibility = %q, want minor", got.Compatibility)
	}
	if len(got.Dependencies.Groups) != 2 {
		t.Fatalf("Groups = %+v, want 2 groups", got.Dependencies.Groups)
	}
	if got.Dependencies.Groups[0].Type != artifact.GroupRun || got.Dependencies.Groups[1].Type != artifact.GroupCompile {
		t.Errorf("group order not preserved: %s, %s", got.Dependencies.Groups[0].Type, got.Dependencies.Groups[1].Type)
	}
	want := md.Dependencies.Refs()
	refs := got.Dependencies.Refs()
	if len(refs) != len(want) {
		t.Fatalf("Refs() = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("ref %d = %+v, want %+v", i, refs[i], want[i])
		}
	}
}

func TestDecodeLegacyAttribute(t *testing.T) {
	input := `<artifact-meta-data compatType="patch"/>`
	md, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if md.Compatibility != "patch" {
		t.Errorf("Compatibility = %q, want patch", md.Compatibility)
	}
	if !md.Dependencies.Empty() {
		t.Error("expected no dependencies")
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown root child", `<artifact-meta-data><license/></artifact-meta-data>`},
		{"unknown dependencies child", `<artifact-meta-data><dependencies><artifact/></dependencies></artifact-meta-data>`},
		{"unknown group child", `<artifact-meta-data><dependencies><artifact-group type="run"><dep/></artifact-group></dependencies></artifact-meta-data>`},
		{"group without type", `<artifact-meta-data><dependencies><artifact-group><artifact project="a" version="1.0" type="jar"/></artifact-group></dependencies></artifact-meta-data>`},
		{"artifact without version", `<artifact-meta-data><dependencies><artifact-group type="run"><artifact project="a" type="jar"/></artifact-group></dependencies></artifact-meta-data>`},
		{"wrong root", `<project/>`},
		{"not xml", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Decode() succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidMetadata) && !errors.Is(err, errors.ErrCodeInvalidIdentity) {
				t.Errorf("error code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestDecodeDefaultsType(t *testing.T) {
	input := `<artifact-meta-data><dependencies><artifact-group type="run"><artifact group="g" project="p" version="1.0"/></artifact-group></dependencies></artifact-meta-data>`
	md, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	refs := md.Dependencies.Refs()
	if len(refs) != 1 || refs[0].Type != "jar" || refs[0].Name != "p" {
		t.Errorf("Refs() = %+v, want one jar named p", refs)
	}
}

func TestFromPOM(t *testing.T) {
	pom := `<?xml version="1.0"?>
<project>
  <groupId>org.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>core</artifactId>
      <version>2.1</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.12</version>
      <scope>test</scope>
    </dependency>
    <dependency>
      <groupId>javax.servlet</groupId>
      <artifactId>servlet-api</artifactId>
      <scope>provided</scope>
      <type>war</type>
    </dependency>
  </dependencies>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.managed</groupId>
        <artifactId>managed</artifactId>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

	md, err := FromPOM(strings.NewReader(pom))
	if err != nil {
		t.Fatalf("FromPOM() error: %v", err)
	}
	if md.Compatibility != "major" {
		t.Errorf("Compatibility = %q, want major", md.Compatibility)
	}

	tests := []struct {
		group   string
		project string
		version string
		typ     string
	}{
		{artifact.GroupRun, "core", "2.1", "jar"},
		{artifact.GroupTestRun, "junit", "4.12", "jar"},
		{artifact.GroupCompileOnly, "servlet-api", artifact.Latest, "war"},
	}
	for _, tt := range tests {
		g, ok := md.Dependencies.Lookup(tt.group)
		if !ok || len(g.Refs) != 1 {
			t.Errorf("group %q = %+v, want one ref", tt.group, g)
			continue
		}
		r := g.Refs[0]
		if r.Project != tt.project || r.Name != tt.project || r.Version != tt.version || r.Type != tt.typ {
			t.Errorf("group %q ref = %+v", tt.group, r)
		}
	}
	if got := len(md.Dependencies.Refs()); got != 3 {
		t.Errorf("len(Refs()) = %d, want 3 (managed dependencies excluded)", got)
	}
}

func TestFromPOMWithoutDependencies(t *testing.T) {
	md, err := FromPOM(strings.NewReader(`<project><artifactId>solo</artifactId></project>`))
	if err != nil {
		t.Fatalf("FromPOM() error: %v", err)
	}
	if !md.Dependencies.Empty() {
		t.Error("expected no dependencies")
	}
}
