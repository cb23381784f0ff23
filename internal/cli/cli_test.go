package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/errors"
)

// run executes the root command with args.
func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// writeProject creates a project publishing util.jar into a cache rooted
// at repo and returns the path of its project file.
func writeProject(t *testing.T, repo string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "util.jar"), []byte("util classes"), 0644); err != nil {
		t.Fatal(err)
	}
	content := `
[project]
group = "org.acme"
name = "util"
version = "1.2"

[[publications]]
type = "jar"
file = "util.jar"

[listings]
kind = "none"

[[fetch]]
kind = "cache"
dir = "` + filepath.ToSlash(repo) + `"

[[publish]]
kind = "cache"
dir = "` + filepath.ToSlash(repo) + `"
`
	path := filepath.Join(dir, "depot.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPublishResolveGraph(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	repo := t.TempDir()
	file := writeProject(t, repo)

	if err := run(t, "publish", "-f", file); err != nil {
		t.Fatalf("publish: %v", err)
	}
	published := filepath.Join(repo, "org", "acme", "util", "1.2", "util-1.2.jar")
	if _, err := os.Stat(published); err != nil {
		t.Fatalf("published file missing: %v", err)
	}

	metrics := filepath.Join(t.TempDir(), "depot.prom")
	if err := run(t, "resolve", "-f", file, "--metrics-file", metrics, "org.acme:util:{latest}"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(data), `depot_resolve_total{result="ok"} 1`) {
		t.Errorf("metrics file lacks resolve counter:\n%s", data)
	}

	out := filepath.Join(t.TempDir(), "deps.dot")
	if err := run(t, "graph", "-f", file, "-o", out, "--detailed", "org.acme:util:1.2"); err != nil {
		t.Fatalf("graph: %v", err)
	}
	dot, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"project" -> "org.acme:util:util:jar"`) {
		t.Errorf("graph output:\n%s", dot)
	}

	if err := run(t, "clean", "-f", file, "org.acme:util:1.2"); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(published); !os.IsNotExist(err) {
		t.Errorf("cleaned file still present: %v", err)
	}
}

func TestCommandErrors(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	file := writeProject(t, t.TempDir())

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad coordinate", []string{"resolve", "-f", file, "org.acme"}, errors.ErrCodeInvalidInput},
		{"missing project file", []string{"resolve", "-f", filepath.Join(t.TempDir(), "depot.toml")}, errors.ErrCodeInvalidConfig},
		{"unknown set", []string{"resolve", "-f", file, "--set", "tools"}, errors.ErrCodeInvalidConfig},
		{"bad format", []string{"graph", "-f", file, "--format", "png"}, errors.ErrCodeInvalidInput},
		{"bad exclude", []string{"graph", "-f", file, "--exclude", "org.acme:util", "org.acme:util:1.2"}, errors.ErrCodeInvalidIdentity},
		{"missing artifact", []string{"resolve", "-f", file, "org.acme:missing:1.0"}, errors.ErrCodeArtifactNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseIdentity(t *testing.T) {
	id, err := parseIdentity("org.acme:util:util:jar")
	if err != nil {
		t.Fatal(err)
	}
	if id.Group != "org.acme" || id.Project != "util" || id.Type != "jar" {
		t.Errorf("parseIdentity() = %+v", id)
	}
}
