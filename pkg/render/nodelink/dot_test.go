package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/artifact"
)

func testGraph() *artifact.Graph {
	g := artifact.NewGraph()
	app := artifact.NewIdentity("org.acme", "app", "", "jar")
	util := artifact.NewIdentity("org.acme", "util", "", "jar")
	junit := artifact.NewIdentity("org.junit", "junit", "", "jar")
	g.AddLink(artifact.ProjectRoot, app, artifact.Link{DependentVersion: artifact.ProjectVersion, DependencyVersion: "1.0", GroupType: "run"})
	g.AddLink(artifact.ProjectRoot, util, artifact.Link{DependentVersion: artifact.ProjectVersion, DependencyVersion: "2.1", GroupType: "run"})
	g.AddLink(app, util, artifact.Link{DependentVersion: "1.0", DependencyVersion: "2.0", GroupType: "run", Compatibility: "minor"})
	g.AddLink(artifact.ProjectRoot, junit, artifact.Link{DependentVersion: artifact.ProjectVersion, DependencyVersion: "4.12", GroupType: "test-run"})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})

	for _, want := range []string{
		"digraph G",
		`"project" [label="project", shape=ellipse`,
		`"project" -> "org.acme:app:app:jar";`,
		`"org.acme:app:app:jar" -> "org.acme:util:util:jar";`,
		`"org.junit:junit:junit:jar"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOTHighlightsConflicts(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})
	if !strings.Contains(dot, `label="org.acme:util:util:jar\n2.0, 2.1", fillcolor=orange`) {
		t.Errorf("conflicting node not highlighted:\n%s", dot)
	}
	if strings.Contains(dot, `app:jar\n1.0", fillcolor=orange`) {
		t.Errorf("single version node highlighted:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Detailed: true})
	if !strings.Contains(dot, `[label="2.0 (run)\nminor"]`) {
		t.Errorf("detailed output missing link label:\n%s", dot)
	}
}

func TestToDOTGroupTypes(t *testing.T) {
	dot := ToDOT(testGraph(), Options{GroupTypes: []string{"run"}})
	if strings.Contains(dot, `-> "org.junit:junit:junit:jar"`) {
		t.Errorf("test-run link rendered:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
