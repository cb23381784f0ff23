// Package cache implements the local filesystem backend.
//
// Items are stored below a root directory in the shared repository layout:
//
//	<root>/<group as path>/<project>/<version>/<item>
//
// Integration references use their symbolic version ("1.0-{integration}")
// as directory, so every build of one base version lives side by side. A
// missing item with a "<item>.neg" marker next to it is a negative cache
// hit.
package cache

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/workflow"
)

// Kind is the registry name of the backend.
const Kind = "cache"

// Config configures the backend in a workflow file.
type Config struct {
	// Dir is the cache root. Defaults to [DefaultDir].
	Dir string `toml:"dir" yaml:"dir"`
}

// WithDefaults returns a copy of c with zero fields set to defaults.
func (c Config) WithDefaults() Config {
	if c.Dir == "" {
		c.Dir = DefaultDir()
	}
	return c
}

// DefaultDir returns $XDG_CACHE_HOME/depot/artifacts, falling back to
// ~/.cache/depot/artifacts.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "depot", "artifacts")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "depot", "artifacts")
	}
	return filepath.Join(home, ".cache", "depot", "artifacts")
}

// Backend stores items in a local directory.
type Backend struct {
	dir    string
	logger *log.Logger
}

// New creates a backend rooted at cfg.Dir. A nil logger discards output.
func New(cfg Config, logger *log.Logger) *Backend {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Backend{dir: cfg.Dir, logger: logger}
}

// Factory builds the backend from a workflow entry.
var Factory = workflow.Typed(func(env workflow.Env, cfg Config) (workflow.Backend, error) {
	return New(cfg, env.Logger), nil
})

// Name returns "cache:<dir>".
func (b *Backend) Name() string { return Kind + ":" + b.dir }

// Dir returns the cache root.
func (b *Backend) Dir() string { return b.dir }

// Fetch returns the path of item if it is stored in the cache.
func (b *Backend) Fetch(ctx context.Context, ref artifact.Ref, item string, _ workflow.Publisher) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", workflow.Permanent(err)
	}
	path := ref.Path(b.dir, item)
	if isFile(path) {
		return path, nil
	}
	if isFile(path + artifact.NegativeSuffix) {
		return "", workflow.ErrNegativeCache
	}
	return "", workflow.ErrDoesNotExist
}

// DetermineVersion resolves a symbolic version from the directory names of
// the project (latest) or the file names of the integration directory.
func (b *Backend) DetermineVersion(ctx context.Context, ref artifact.Ref) (string, error) {
	var dir string
	switch {
	case ref.IsLatest():
		dir = ref.ProjectDir(b.dir)
	case ref.IsIntegration():
		dir = ref.Dir(b.dir)
	default:
		return ref.Version, nil
	}
	names, err := list(dir)
	if err != nil {
		return "", workflow.Temporary(err)
	}
	return workflow.VersionFromListing(ref, names, b.logger), nil
}

// Publish copies file into the cache as item, replacing any previous copy.
func (b *Backend) Publish(ctx context.Context, ref artifact.Ref, item, file string) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	dst := ref.Path(b.dir, item)
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return "", &fs.PathError{Op: "publish", Path: dst, Err: errors.New("cache location is a directory")}
	}
	if src, err := filepath.Abs(file); err == nil && src == dst {
		return dst, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	if err := copyFile(dst, file); err != nil {
		return "", err
	}
	if !isChecksum(item) {
		b.logger.Info("cached", "path", dst)
	}
	return dst, nil
}

// Delete removes item. It reports whether a file was removed.
func (b *Backend) Delete(ctx context.Context, ref artifact.Ref, item string) (bool, error) {
	if err := ref.Validate(); err != nil {
		return false, err
	}
	path := ref.Path(b.dir, item)
	if !isFile(path) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteIntegrationBuilds removes the integration directory of ref's base
// version.
func (b *Backend) DeleteIntegrationBuilds(ctx context.Context, ref artifact.Ref) error {
	dir := ref.WithVersion(ref.BaseVersion() + artifact.IntegrationSuffix).Dir(b.dir)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil
	}
	b.logger.Debug("pruning integration builds", "dir", dir)
	return os.RemoveAll(dir)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func isChecksum(item string) bool {
	return filepath.Ext(item) == artifact.ChecksumSuffix
}

// list returns the entry names of dir. A missing directory lists nothing.
func list(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var _ workflow.Backend = (*Backend)(nil)
