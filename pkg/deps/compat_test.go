package deps

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/version"
)

func link(dependent, dependency, group, compat string) artifact.Link {
	return artifact.Link{
		DependentVersion:  dependent,
		DependencyVersion: dependency,
		GroupType:         group,
		Compatibility:     compat,
	}
}

func TestReconcileIdempotent(t *testing.T) {
	p, set := conflictRepo(t, "minor")
	ctx := context.Background()
	g, err := NewService(Options{}).BuildGraph(ctx, set, p.workflow(), true)
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}

	r := NewCompatibilityResolver(Options{})
	if errs := r.Reconcile(ctx, g, nil); !errs.Empty() {
		t.Fatalf("first pass: %v", errs.Items())
	}
	links := g.LinkCount()
	middle := g.Inbound(ref("middle", "").Identity)

	if errs := r.Reconcile(ctx, g, nil); !errs.Empty() {
		t.Fatalf("second pass: %v", errs.Items())
	}
	if g.LinkCount() != links {
		t.Errorf("second pass changed link count %d -> %d", links, g.LinkCount())
	}
	if !slices.Equal(g.Inbound(ref("middle", "").Identity), middle) {
		t.Error("second pass rewrote inbound links of middle")
	}
}

func TestReconcileTagMismatch(t *testing.T) {
	g := artifact.NewGraph()
	x := ref("x", "").Identity
	a, b := ref("a", "").Identity, ref("b", "").Identity
	g.AddLink(artifact.ProjectRoot, a, link("0.0", "1.0", artifact.GroupRun, ""))
	g.AddLink(artifact.ProjectRoot, b, link("0.0", "1.0", artifact.GroupCompile, ""))
	g.AddLink(a, x, link("1.0", "2.0", artifact.GroupRun, version.CompatMinor))
	g.AddLink(b, x, link("1.0", "2.0", artifact.GroupCompile, version.CompatMajor))

	r := NewCompatibilityResolver(Options{})
	errs := r.Reconcile(context.Background(), g, nil)
	if errs.Len() != 1 {
		t.Fatalf("got %d errors, want 1: %v", errs.Len(), errs.Items())
	}
	msg := errs.Items()[0]
	for _, want := range []string{"two different compatibility types", "[org.acme:a:a:jar] -> [org.acme:x:x:jar]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error does not mention %q:\n%s", want, msg)
		}
	}

	if errs := r.Reconcile(context.Background(), g, []string{artifact.GroupRun}); !errs.Empty() {
		t.Errorf("out-of-scope tag reported: %v", errs.Items())
	}
}

func TestReconcileUntaggedNeedsIdentical(t *testing.T) {
	g := artifact.NewGraph()
	x := ref("x", "").Identity
	g.AddLink(ref("a", "").Identity, x, link("1.0", "1.0", artifact.GroupRun, ""))
	g.AddLink(ref("b", "").Identity, x, link("1.0", "1.1", artifact.GroupCompile, ""))

	// Without a project root there is no path to report.
	errs := NewCompatibilityResolver(Options{}).Reconcile(context.Background(), g, nil)
	if errs.Len() != 1 || !strings.Contains(errs.Items()[0], "inside this project") {
		t.Errorf("errors = %v", errs.Items())
	}
}

func TestReconcileUnknownTag(t *testing.T) {
	g := artifact.NewGraph()
	x := ref("x", "").Identity
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.0", artifact.GroupRun, "calendar"))
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.1", artifact.GroupCompile, "calendar"))

	errs := NewCompatibilityResolver(Options{}).Reconcile(context.Background(), g, nil)
	if errs.Len() != 1 || !strings.Contains(errs.Items()[0], "unknown compatibility type [calendar]") {
		t.Errorf("errors = %v", errs.Items())
	}
}

func TestReconcileIgnoresOutOfScopeTag(t *testing.T) {
	g := artifact.NewGraph()
	x := ref("x", "").Identity
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.0", artifact.GroupRun, ""))
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.0", artifact.GroupRun, ""))
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "2.0", artifact.GroupCompile, "calendar"))

	errs := NewCompatibilityResolver(Options{}).Reconcile(context.Background(), g, []string{artifact.GroupRun})
	if !errs.Empty() {
		t.Errorf("errors = %v", errs.Items())
	}
}

func TestReconcileCustomComparator(t *testing.T) {
	reg := version.NewRegistry()
	reg.Register("oldest", version.ComparatorFunc(func(a, b string) (string, bool) {
		if version.Max(a, b) == a {
			return b, true
		}
		return a, true
	}))
	g := artifact.NewGraph()
	x := ref("x", "").Identity
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "2.0", artifact.GroupRun, "oldest"))
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.5", artifact.GroupCompile, "oldest"))

	hooks := &conflictHooks{}
	opts := Options{Comparators: reg}
	opts.Hooks.Resolution = hooks
	if errs := NewCompatibilityResolver(opts).Reconcile(context.Background(), g, nil); !errs.Empty() {
		t.Fatalf("errors = %v", errs.Items())
	}
	for _, in := range g.Inbound(x) {
		if in.Value.DependencyVersion != "1.5" || in.Value.Compatibility != "oldest" {
			t.Errorf("inbound link = %+v, want 1.5 tagged oldest", in.Value)
		}
	}
	if hooks.conflicts != 0 {
		t.Errorf("%d conflicts reported, want 0", hooks.conflicts)
	}
}

func TestReconcileReportsConflicts(t *testing.T) {
	g := artifact.NewGraph()
	x := ref("x", "").Identity
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.0", artifact.GroupRun, version.CompatIdentical))
	g.AddLink(artifact.ProjectRoot, x, link("0.0", "1.1", artifact.GroupCompile, version.CompatIdentical))

	hooks := &conflictHooks{}
	var opts Options
	opts.Hooks.Resolution = hooks
	NewCompatibilityResolver(opts).Reconcile(context.Background(), g, nil)
	if hooks.conflicts != 1 || hooks.last != x.String() {
		t.Errorf("conflicts = %d (last %q), want 1 for %s", hooks.conflicts, hooks.last, x)
	}
}
