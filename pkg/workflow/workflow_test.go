package workflow

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/metadata"
)

// fakeBackend answers fetches from a table of item results. Items without
// an entry do not exist.
type fakeBackend struct {
	name      string
	items     map[string]string
	errs      map[string]error
	versions  map[string]string
	publishes []string
	deletes   []string
	fetches   []string
	pubErr    error
	readOnly  bool
}

func newFake(name string) *fakeBackend {
	return &fakeBackend{
		name:     name,
		items:    make(map[string]string),
		errs:     make(map[string]error),
		versions: make(map[string]string),
	}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Fetch(ctx context.Context, ref artifact.Ref, item string, publish Publisher) (string, error) {
	f.fetches = append(f.fetches, item)
	if err, ok := f.errs[item]; ok {
		return "", err
	}
	if p, ok := f.items[item]; ok {
		return p, nil
	}
	return "", ErrDoesNotExist
}

func (f *fakeBackend) DetermineVersion(ctx context.Context, ref artifact.Ref) (string, error) {
	if err, ok := f.errs["version"]; ok {
		return "", err
	}
	return f.versions[ref.Version], nil
}

func (f *fakeBackend) Publish(ctx context.Context, ref artifact.Ref, item, file string) (string, error) {
	if f.readOnly {
		return "", ErrUnsupported
	}
	if f.pubErr != nil {
		return "", f.pubErr
	}
	f.publishes = append(f.publishes, item)
	return filepath.Join("/"+f.name, item), nil
}

func (f *fakeBackend) Delete(ctx context.Context, ref artifact.Ref, item string) (bool, error) {
	if f.readOnly {
		return false, ErrUnsupported
	}
	f.deletes = append(f.deletes, item)
	return true, nil
}

func (f *fakeBackend) DeleteIntegrationBuilds(ctx context.Context, ref artifact.Ref) error {
	if f.readOnly {
		return ErrUnsupported
	}
	f.deletes = append(f.deletes, ref.BaseVersion()+artifact.IntegrationSuffix)
	return nil
}

var testRef = artifact.NewRef("org.acme", "core", "", "1.0", "jar")

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, Found},
		{ErrDoesNotExist, DoesNotExist},
		{ErrNegativeCache, NegativeCacheHit},
		{Temporaryf("timeout"), TemporaryFailure},
		{Permanent(ErrDoesNotExist), PermanentFailure},
		{context.Canceled, PermanentFailure},
		{Temporary(context.DeadlineExceeded), PermanentFailure},
		{stderrors.New("disk on fire"), PermanentFailure},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestFetchItemFallsThrough(t *testing.T) {
	first, second, third := newFake("a"), newFake("b"), newFake("c")
	second.items[testRef.FileItem()] = "/b/core-1.0.jar"
	third.items[testRef.FileItem()] = "/c/core-1.0.jar"

	chain := NewFetchChain(nil, nil, first, second, third)
	session := NewSession()
	path, err := chain.FetchItem(context.Background(), testRef, testRef.FileItem(), nil, session)
	if err != nil {
		t.Fatalf("FetchItem error: %v", err)
	}
	if path != "/b/core-1.0.jar" {
		t.Errorf("path = %q, want second backend", path)
	}
	if len(third.fetches) != 0 {
		t.Error("chain continued after a hit")
	}
	if session.Len() != 0 {
		t.Error("hit recorded as miss")
	}
}

func TestFetchItemPermanentAborts(t *testing.T) {
	first, second := newFake("a"), newFake("b")
	first.errs[testRef.FileItem()] = Permanentf("checksum mismatch")
	second.items[testRef.FileItem()] = "/b/core-1.0.jar"

	chain := NewFetchChain(nil, nil, first, second)
	_, err := chain.FetchItem(context.Background(), testRef, testRef.FileItem(), nil, NewSession())
	if !errors.Is(err, errors.ErrCodePermanentIO) {
		t.Fatalf("err = %v, want PERMANENT_IO", err)
	}
	if len(second.fetches) != 0 {
		t.Error("second backend consulted after permanent failure")
	}
}

func TestFetchItemNegativeHit(t *testing.T) {
	first, second := newFake("a"), newFake("b")
	first.errs[testRef.FileItem()] = ErrNegativeCache
	second.items[testRef.FileItem()] = "/b/core-1.0.jar"

	session := NewSession()
	path, err := NewFetchChain(nil, nil, first, second).FetchItem(context.Background(), testRef, testRef.FileItem(), nil, session)
	if err != nil || path != "" {
		t.Fatalf("FetchItem = %q, %v; want clean miss", path, err)
	}
	if len(second.fetches) != 0 {
		t.Error("chain continued after negative hit")
	}
	if session.Len() != 0 {
		t.Error("negative hit should not be recorded again")
	}
}

func TestFetchItemMissRecorded(t *testing.T) {
	session := NewSession()
	chain := NewFetchChain(nil, nil, newFake("a"), newFake("b"))
	for range 2 {
		if _, err := chain.FetchItem(context.Background(), testRef, testRef.FileItem(), nil, session); err != nil {
			t.Fatal(err)
		}
	}
	misses := session.Drain()
	if len(misses) != 1 {
		t.Fatalf("misses = %d, want 1 (deduplicated)", len(misses))
	}
	if misses[0].Item != testRef.FileItem() || misses[0].MetaData() {
		t.Errorf("miss = %+v", misses[0])
	}
	if session.Len() != 0 {
		t.Error("Drain should clear the session")
	}
}

func TestFetchItemTemporarySuppressesMiss(t *testing.T) {
	first := newFake("a")
	first.errs[testRef.FileItem()] = Temporaryf("503")
	session := NewSession()
	chain := NewFetchChain(nil, nil, first, newFake("b"))
	if _, err := chain.FetchItem(context.Background(), testRef, testRef.FileItem(), nil, session); err != nil {
		t.Fatal(err)
	}
	if session.Len() != 0 {
		t.Error("miss recorded despite temporary failure")
	}
}

const testPOM = `<project>
  <groupId>org.acme</groupId>
  <artifactId>core</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency>
      <groupId>org.acme</groupId>
      <artifactId>log</artifactId>
      <version>2.0</version>
    </dependency>
  </dependencies>
</project>`

func TestFetchMetaDataNative(t *testing.T) {
	dir := t.TempDir()
	md := &artifact.Metadata{Compatibility: "minor", Dependencies: artifact.NewSet()}
	md.Dependencies.Add(artifact.GroupRun, artifact.NewRef("org.acme", "log", "", "2.0", "jar"))
	amd := filepath.Join(dir, testRef.MetaDataItem())
	if err := metadata.WriteFile(amd, md); err != nil {
		t.Fatal(err)
	}

	b := newFake("a")
	b.items[testRef.MetaDataItem()] = amd
	got, err := NewFetchChain(nil, nil, b).FetchMetaData(context.Background(), testRef, nil, NewSession())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Compatibility != "minor" || len(got.Dependencies.Refs()) != 1 {
		t.Errorf("metadata = %+v", got)
	}
}

func TestFetchMetaDataFromPOM(t *testing.T) {
	dir := t.TempDir()
	pom := filepath.Join(dir, testRef.POMItem())
	if err := os.WriteFile(pom, []byte(testPOM), 0644); err != nil {
		t.Fatal(err)
	}

	remote, local := newFake("remote"), newFake("local")
	remote.items[testRef.POMItem()] = pom
	publish := NewPublishChain(nil, nil, local)

	got, err := NewFetchChain(nil, nil, remote).FetchMetaData(context.Background(), testRef, publish, NewSession())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("POM was not translated")
	}
	refs := got.Dependencies.Refs()
	if len(refs) != 1 || refs[0].Name != "log" || refs[0].Version != "2.0" {
		t.Errorf("dependencies = %+v", refs)
	}
	if len(local.publishes) != 1 || local.publishes[0] != testRef.MetaDataItem() {
		t.Errorf("publishes = %v, want translated descriptor", local.publishes)
	}
}

func TestFetchMetaDataMiss(t *testing.T) {
	session := NewSession()
	got, err := NewFetchChain(nil, nil, newFake("a")).FetchMetaData(context.Background(), testRef, nil, session)
	if err != nil || got != nil {
		t.Fatalf("FetchMetaData = %v, %v; want miss", got, err)
	}
	misses := session.Drain()
	if len(misses) != 1 || !misses[0].MetaData() {
		t.Errorf("misses = %+v", misses)
	}
}

func TestDetermineVersionTakesMax(t *testing.T) {
	latest := testRef.WithVersion(artifact.Latest)
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	a.versions[artifact.Latest] = "1.2"
	b.errs["version"] = Temporaryf("offline")
	c.versions[artifact.Latest] = "1.10"

	got, err := NewFetchChain(nil, nil, a, b, c).DetermineVersion(context.Background(), latest)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1.10" {
		t.Errorf("DetermineVersion = %q, want 1.10", got)
	}
}

func TestPublishChain(t *testing.T) {
	remote, first, second := newFake("remote"), newFake("first"), newFake("second")
	remote.readOnly = true
	chain := NewPublishChain(nil, nil, remote, first, second)

	path, err := chain.Publish(context.Background(), testRef, testRef.FileItem(), "/tmp/x")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/first", testRef.FileItem()) {
		t.Errorf("path = %q, want first publishing backend", path)
	}
	if len(first.publishes) != 1 || len(second.publishes) != 1 {
		t.Error("publish must reach every backend")
	}
}

func TestPublishChainCollectsErrors(t *testing.T) {
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	a.pubErr = stderrors.New("read-only filesystem")
	c.pubErr = stderrors.New("quota exceeded")
	chain := NewPublishChain(nil, nil, a, b, c)

	_, err := chain.Publish(context.Background(), testRef, testRef.FileItem(), "/tmp/x")
	if !errors.Is(err, errors.ErrCodePublish) {
		t.Fatalf("err = %v, want PUBLISH_FAILED", err)
	}
	if len(b.publishes) != 1 {
		t.Error("a failure must not stop the chain")
	}
	msg := err.Error()
	if !strings.Contains(msg, "read-only") || !strings.Contains(msg, "quota") {
		t.Errorf("error should list every failure: %s", msg)
	}
}

func TestPublishNegativeMetaData(t *testing.T) {
	local := newFake("local")
	NewPublishChain(nil, nil, local).PublishNegativeMetaData(context.Background(), testRef)
	if len(local.publishes) != 1 || local.publishes[0] != testRef.NegativeMetaDataItem() {
		t.Errorf("publishes = %v", local.publishes)
	}
}

func TestDelete(t *testing.T) {
	remote, local := newFake("remote"), newFake("local")
	remote.readOnly = true
	chain := NewPublishChain(nil, nil, remote, local)
	ok, err := chain.Delete(context.Background(), testRef, testRef.FileItem())
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if err := chain.DeleteIntegrationBuilds(context.Background(), testRef); err != nil {
		t.Fatal(err)
	}
	if len(local.deletes) != 2 || local.deletes[1] != "1.0-{integration}" {
		t.Errorf("deletes = %v", local.deletes)
	}
}
