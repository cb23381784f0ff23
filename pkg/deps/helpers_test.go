package deps

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/backend/cache"
	"github.com/matzehuels/depot/pkg/metadata"
	"github.com/matzehuels/depot/pkg/observability"
	"github.com/matzehuels/depot/pkg/workflow"
)

func ref(name, version string) artifact.Ref {
	return artifact.NewRef("org.acme", name, "", version, "jar")
}

func setOf(typ string, refs ...artifact.Ref) *artifact.Set {
	s := artifact.NewSet()
	s.Add(typ, refs...)
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// repo is a cache directory seeded with artifacts, served through a
// workflow whose chains both use the same cache backend.
type repo struct {
	t       *testing.T
	dir     string
	backend *countingBackend
}

func newRepo(t *testing.T) *repo {
	dir := t.TempDir()
	return &repo{
		t:       t,
		dir:     dir,
		backend: &countingBackend{Backend: cache.New(cache.Config{Dir: dir}, nil), fetches: map[string]int{}},
	}
}

// put stores the primary file of r and, when md is non-nil, its metadata.
func (p *repo) put(r artifact.Ref, md *artifact.Metadata) {
	p.t.Helper()
	writeFile(p.t, r.Path(p.dir, r.FileItem()), r.String())
	if md == nil {
		return
	}
	if err := metadata.WriteFile(r.Path(p.dir, r.MetaDataItem()), md); err != nil {
		p.t.Fatal(err)
	}
}

func (p *repo) exists(r artifact.Ref, item string) bool {
	_, err := os.Stat(r.Path(p.dir, item))
	return err == nil
}

func (p *repo) workflow() *workflow.Workflow {
	return &workflow.Workflow{
		Fetch:   workflow.NewFetchChain(nil, nil, p.backend),
		Publish: workflow.NewPublishChain(nil, nil, p.backend),
	}
}

// countingBackend records how often each item was fetched.
type countingBackend struct {
	workflow.Backend

	mu      sync.Mutex
	fetches map[string]int
}

func (b *countingBackend) Fetch(ctx context.Context, r artifact.Ref, item string, publish workflow.Publisher) (string, error) {
	b.mu.Lock()
	b.fetches[item]++
	b.mu.Unlock()
	return b.Backend.Fetch(ctx, r, item, publish)
}

func withDeps(typ string, refs ...artifact.Ref) *artifact.Metadata {
	return &artifact.Metadata{Dependencies: setOf(typ, refs...)}
}

// recorder is a Listener capturing every event.
type recorder struct {
	found     map[string]string
	published []string
	cleaned   []string
}

func newRecorder() *recorder { return &recorder{found: map[string]string{}} }

func (r *recorder) ArtifactFound(file string, ref artifact.Ref) { r.found[ref.String()] = file }
func (r *recorder) ArtifactPublished(ref artifact.Ref)          { r.published = append(r.published, ref.String()) }
func (r *recorder) ArtifactCleaned(ref artifact.Ref)            { r.cleaned = append(r.cleaned, ref.String()) }

// byName indexes resolution results by "name-version".
func byName(found map[artifact.Ref]string) map[string]string {
	out := make(map[string]string, len(found))
	for r, path := range found {
		out[r.ArtifactName()+"-"+r.EffectiveVersion()] = path
	}
	return out
}

// conflictHooks counts reported conflicts.
type conflictHooks struct {
	observability.NoopResolutionHooks
	conflicts int
	last      string
}

func (h *conflictHooks) OnConflict(_ context.Context, id string) {
	h.conflicts++
	h.last = id
}
