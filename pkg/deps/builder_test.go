package deps

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
)

func TestBuildGraphLinks(t *testing.T) {
	p := newRepo(t)
	app, lib := ref("app", "1.0"), ref("lib", "2.0")
	md := withDeps(artifact.GroupRun, lib)
	md.Compatibility = "minor"
	p.put(app, md)
	p.put(lib, nil)

	set := setOf(artifact.GroupCompile, app)
	g, err := NewService(Options{}).BuildGraph(context.Background(), set, p.workflow(), true)
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}
	if set.Graph() != g {
		t.Error("graph not attached to the set")
	}

	in := g.Inbound(app.Identity)
	if len(in) != 1 {
		t.Fatalf("app has %d inbound links, want 1", len(in))
	}
	want := artifact.Link{
		DependentVersion:  artifact.ProjectVersion,
		DependencyVersion: "1.0",
		GroupType:         artifact.GroupCompile,
		Compatibility:     "minor",
	}
	if in[0].Origin != artifact.ProjectRoot || in[0].Value != want {
		t.Errorf("root -> app = %+v", in[0])
	}

	out := g.Outbound(app.Identity)
	if len(out) != 1 || out[0].Destination != lib.Identity || out[0].Value.DependentVersion != "1.0" {
		t.Errorf("app outbound = %+v", out)
	}
}

func TestBuildGraphDiamond(t *testing.T) {
	p := newRepo(t)
	a, b := ref("a", "1.0"), ref("b", "1.0")
	shared, leaf := ref("shared", "1.0"), ref("leaf", "1.0")
	p.put(a, withDeps(artifact.GroupRun, shared))
	p.put(b, withDeps(artifact.GroupRun, shared))
	p.put(shared, withDeps(artifact.GroupRun, leaf))
	p.put(leaf, nil)

	g, err := NewService(Options{}).BuildGraph(context.Background(), setOf(artifact.GroupRun, a, b), p.workflow(), true)
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}
	if n := len(g.Inbound(shared.Identity)); n != 2 {
		t.Errorf("shared has %d inbound links, want 2", n)
	}
	if n := len(g.Inbound(leaf.Identity)); n != 1 {
		t.Errorf("leaf has %d inbound links, want 1 (expanded once)", n)
	}
	if n := p.backend.fetches[leaf.MetaDataItem()]; n != 1 {
		t.Errorf("leaf metadata fetched %d times, want 1", n)
	}
}

func TestBuildGraphCycle(t *testing.T) {
	p := newRepo(t)
	a, b := ref("a", "1.0"), ref("b", "1.0")
	p.put(a, withDeps(artifact.GroupRun, b))
	p.put(b, withDeps(artifact.GroupRun, ref("a", "2.0")))

	set := setOf(artifact.GroupRun, a)
	g, err := NewService(Options{}).BuildGraph(context.Background(), set, p.workflow(), true)
	if !errors.Is(err, errors.ErrCodeCyclicDependency) {
		t.Fatalf("err = %v, want CYCLIC_DEPENDENCY", err)
	}
	if !strings.Contains(err.Error(), "[org.acme:a:a:jar] -> [org.acme:b:b:jar] -> [org.acme:a:a:jar]") {
		t.Errorf("error does not name the cycle: %v", err)
	}
	if g == nil || len(g.Inbound(a.Identity)) != 2 {
		t.Error("closing link b -> a missing from the diagnostic graph")
	}
	if set.Graph() != nil {
		t.Error("cyclic graph attached to the set")
	}
}

func TestBuildGraphMaxDepth(t *testing.T) {
	p := newRepo(t)
	chain := []artifact.Ref{ref("d0", "1.0"), ref("d1", "1.0"), ref("d2", "1.0"), ref("d3", "1.0")}
	for i, r := range chain[:len(chain)-1] {
		p.put(r, withDeps(artifact.GroupRun, chain[i+1]))
	}
	p.put(chain[len(chain)-1], nil)

	_, err := NewService(Options{MaxDepth: 2}).BuildGraph(context.Background(), setOf(artifact.GroupRun, chain[0]), p.workflow(), true)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if _, err := NewService(Options{}).BuildGraph(context.Background(), setOf(artifact.GroupRun, chain[0]), p.workflow(), true); err != nil {
		t.Errorf("default depth: %v", err)
	}
}

func TestBuildGraphUnresolvedVersion(t *testing.T) {
	p := newRepo(t)
	set := setOf(artifact.GroupRun, ref("ghost", artifact.Latest), ref("phantom", "1.0"+artifact.IntegrationSuffix))

	_, err := NewService(Options{}).BuildGraph(context.Background(), set, p.workflow(), true)
	if !errors.Is(err, errors.ErrCodeVersionNotFound) {
		t.Fatalf("err = %v, want VERSION_NOT_FOUND", err)
	}
	var le *errors.ListError
	if !stderrors.As(err, &le) || len(le.Items) != 2 {
		t.Errorf("err = %v, want both references reported", err)
	}
}

func TestBuildGraphNeedsFetchChain(t *testing.T) {
	_, err := NewService(Options{}).BuildGraph(context.Background(), artifact.NewSet(), nil, true)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
