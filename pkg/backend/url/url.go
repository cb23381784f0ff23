// Package url implements a read-only backend over plain HTTP GET.
//
// The remote repository must serve the shared layout below its base URL:
//
//	<url>/<group as path>/<project>/<version>/<item>
//
// Every item is expected to have a "<item>.md5" sidecar. The sidecar is
// downloaded first and the item is verified while it streams to disk; a
// mismatch is a permanent failure. Downloads are handed to the publish
// chain so they land in the local cache.
//
// Symbolic versions are resolved from directory listings, either HTML
// index pages (anchors are parsed) or plain newline separated names.
// Listings are cached in a [cache.Cache] for a short time.
package url

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/cache"
	"github.com/matzehuels/depot/pkg/checksum"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/httputil"
	"github.com/matzehuels/depot/pkg/workflow"
)

// Kind is the registry name of the backend.
const Kind = "url"

// Config configures the backend in a workflow file.
type Config struct {
	// URL is the base URL of the repository. Required.
	URL string `toml:"url" yaml:"url"`

	// Username and Password enable basic authentication. Both or neither
	// must be set.
	Username string `toml:"username" yaml:"username"`
	Password string `toml:"password" yaml:"password"`

	// Timeout bounds a single request. Defaults to 30s.
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`

	// Attempts is the number of tries for retryable failures. Defaults to 3.
	Attempts int `toml:"attempts" yaml:"attempts"`

	// RetryDelay is the delay before the first retry; it doubles after each
	// attempt. Defaults to 500ms.
	RetryDelay time.Duration `toml:"retry_delay" yaml:"retry_delay"`

	// ListingTTL is how long directory listings stay cached. Defaults to 5m.
	ListingTTL time.Duration `toml:"listing_ttl" yaml:"listing_ttl"`
}

// WithDefaults returns a copy of c with zero fields set to defaults.
func (c Config) WithDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.ListingTTL == 0 {
		c.ListingTTL = 5 * time.Minute
	}
	return c
}

// Validate reports every problem of c.
func (c Config) Validate() error {
	var errs errors.List
	if c.URL == "" {
		errs.Add("the url attribute is required")
	} else if err := errors.ValidateURL(c.URL); err != nil {
		errs.AddErr(err)
	}
	if (c.Username == "") != (c.Password == "") {
		errs.Add("username and password must be set together to enable authentication")
	}
	return errs.Err(errors.ErrCodeInvalidConfig, "invalid url backend")
}

// Backend fetches items from a remote repository.
type Backend struct {
	base     *neturl.URL
	cfg      Config
	client   *http.Client
	listings cache.Cache
	logger   *log.Logger
}

// New creates a backend. listings may be nil to disable listing caching and
// a nil logger discards output.
func New(cfg Config, listings cache.Cache, logger *log.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	base, err := neturl.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse url %q", cfg.URL)
	}
	if listings == nil {
		listings = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Backend{
		base:     base,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		listings: listings,
		logger:   logger,
	}, nil
}

// Factory builds the backend from a workflow entry. Listings are cached in
// env.Cache and reported to env.Hooks.
var Factory = workflow.Typed(func(env workflow.Env, cfg Config) (workflow.Backend, error) {
	var listings cache.Cache
	if env.Cache != nil {
		listings = cache.Instrument(env.Cache, env.Hooks.Cache, "listing")
	}
	return New(cfg, listings, env.Logger)
})

// Name returns "url:<base url>".
func (b *Backend) Name() string { return Kind + ":" + b.base.Redacted() }

// Fetch downloads item and its checksum sidecar and publishes both through
// publish. The returned path is the one reported by publish; when nothing
// was published locally the path of the verified download is returned and
// the caller owns it.
func (b *Backend) Fetch(ctx context.Context, ref artifact.Ref, item string, publish workflow.Publisher) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", workflow.Permanent(err)
	}
	dir, err := os.MkdirTemp("", "depot-download-")
	if err != nil {
		return "", workflow.Temporary(err)
	}
	keep := false
	defer func() {
		if !keep {
			os.RemoveAll(dir)
		}
	}()

	sidecar := filepath.Join(dir, artifact.ChecksumItem(item))
	sum, err := b.fetchChecksum(ctx, ref, item, sidecar)
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, item)
	u := b.itemURL(ref, item)
	if err := b.download(ctx, u, file, sum); err != nil {
		return "", err
	}
	b.logger.Info("downloaded", "url", u.Redacted())

	if publish == nil {
		keep = true
		return file, nil
	}
	if sum != "" {
		if _, err := publish.Publish(ctx, ref, artifact.ChecksumItem(item), sidecar); err != nil {
			return "", workflow.Permanent(err)
		}
	}
	path, err := publish.Publish(ctx, ref, item, file)
	if err != nil {
		return "", workflow.Permanent(err)
	}
	if path == "" {
		keep = true
		return file, nil
	}
	return path, nil
}

// fetchChecksum downloads the sidecar of item to path and returns the
// digest, or "" when the repository has no sidecar.
func (b *Backend) fetchChecksum(ctx context.Context, ref artifact.Ref, item, path string) (string, error) {
	err := b.download(ctx, b.itemURL(ref, artifact.ChecksumItem(item)), path, "")
	if workflow.Classify(err) == workflow.DoesNotExist {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", workflow.Temporary(err)
	}
	sum, err := checksum.Parse(data)
	if err != nil {
		return "", workflow.Permanent(err)
	}
	return sum, nil
}

// download streams u into path, verifying the digest when sum is set.
func (b *Backend) download(ctx context.Context, u *neturl.URL, path, sum string) error {
	resp, err := b.get(ctx, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return workflow.Temporary(err)
	}
	if _, err := checksum.Copy(f, resp.Body, sum); err != nil {
		f.Close()
		os.Remove(path)
		if stderrors.Is(err, checksum.ErrMismatch) {
			return workflow.Permanent(fmt.Errorf("%s: %w", u.Redacted(), err))
		}
		return workflow.Temporary(err)
	}
	if err := f.Close(); err != nil {
		return workflow.Temporary(err)
	}
	return nil
}

// DetermineVersion resolves a symbolic version from the directory listing
// of the project (latest) or the integration directory.
func (b *Backend) DetermineVersion(ctx context.Context, ref artifact.Ref) (string, error) {
	var u *neturl.URL
	switch {
	case ref.IsLatest():
		u = b.join(ref.ProjectPath())
	case ref.IsIntegration():
		u = b.join(ref.VersionPath())
	default:
		return ref.Version, nil
	}
	names, err := b.listing(ctx, u)
	if workflow.Classify(err) == workflow.DoesNotExist {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return workflow.VersionFromListing(ref, names, b.logger), nil
}

func (b *Backend) listing(ctx context.Context, u *neturl.URL) ([]string, error) {
	key := cache.Key("listing", u.String(), b.cfg.Username)
	if data, ok, err := b.listings.Get(ctx, key); err == nil && ok {
		return ParseListing(string(data)), nil
	} else if err != nil {
		b.logger.Debug("listing cache unavailable", "err", err)
	}

	resp, err := b.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, workflow.Temporary(err)
	}

	names := ParseListing(string(body))
	if err := b.listings.Set(ctx, key, []byte(strings.Join(names, "\n")), b.cfg.ListingTTL); err != nil {
		b.logger.Debug("could not cache listing", "url", u.Redacted(), "err", err)
	}
	return names, nil
}

// Publish is not supported.
func (b *Backend) Publish(context.Context, artifact.Ref, string, string) (string, error) {
	return "", workflow.ErrUnsupported
}

// Delete is not supported.
func (b *Backend) Delete(context.Context, artifact.Ref, string) (bool, error) {
	return false, workflow.ErrUnsupported
}

// DeleteIntegrationBuilds is not supported.
func (b *Backend) DeleteIntegrationBuilds(context.Context, artifact.Ref) error {
	return workflow.ErrUnsupported
}

func (b *Backend) itemURL(ref artifact.Ref, item string) *neturl.URL {
	return b.join(ref.ItemPath(item))
}

func (b *Backend) join(path string) *neturl.URL {
	return b.base.JoinPath(strings.Split(path, "/")...)
}

// get performs a GET with retries. Retryable failures that persist are
// reported as temporary.
func (b *Backend) get(ctx context.Context, u *neturl.URL) (*http.Response, error) {
	var resp *http.Response
	err := httputil.Retry(ctx, b.cfg.Attempts, b.cfg.RetryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return workflow.Permanent(err)
		}
		if b.cfg.Username != "" && b.cfg.Password != "" {
			req.SetBasicAuth(b.cfg.Username, b.cfg.Password)
		}
		r, err := b.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return httputil.Retryable(workflow.Temporary(err))
		}
		if err := checkStatus(r.StatusCode, u); err != nil {
			r.Body.Close()
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}

// checkStatus maps a response status onto a backend outcome.
func checkStatus(code int, u *neturl.URL) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound, code == http.StatusGone, code == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", u.Redacted(), workflow.ErrDoesNotExist)
	case code == http.StatusFound, code == http.StatusTemporaryRedirect:
		return httputil.Retryable(workflow.Temporaryf("%s: redirect status %d", u.Redacted(), code))
	case code >= 300 && code < 400:
		return workflow.Permanentf("%s: redirect status %d", u.Redacted(), code)
	case code >= 500, code == http.StatusTooManyRequests:
		return httputil.Retryable(workflow.Temporaryf("%s: status %d", u.Redacted(), code))
	default:
		return workflow.Permanentf("%s: status %d", u.Redacted(), code)
	}
}

var hrefPattern = regexp.MustCompile(`a href="([^/]+?)/?"`)

// ParseListing extracts entry names from a directory listing. HTML pages
// contribute the targets of their anchors; anything else is read as one
// name per line. Duplicates and blank lines are dropped.
func ParseListing(body string) []string {
	var raw []string
	if strings.Contains(body, "<html") {
		for _, m := range hrefPattern.FindAllStringSubmatch(body, -1) {
			name, err := neturl.PathUnescape(m[1])
			if err != nil {
				continue
			}
			raw = append(raw, name)
		}
	} else {
		raw = strings.Split(body, "\n")
	}

	seen := make(map[string]bool, len(raw))
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

var _ workflow.Backend = (*Backend)(nil)
