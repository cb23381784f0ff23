package workflow

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/metadata"
	"github.com/matzehuels/depot/pkg/observability"
	"github.com/matzehuels/depot/pkg/version"
)

// FetchChain tries an ordered list of backends until one holds the item.
type FetchChain struct {
	backends []Backend
	logger   *log.Logger
	hooks    observability.StorageHooks
}

// NewFetchChain creates a chain over backends in the given order. A nil
// logger discards output and nil hooks record nothing.
func NewFetchChain(logger *log.Logger, hooks observability.StorageHooks, backends ...Backend) *FetchChain {
	if logger == nil {
		logger = discardLogger()
	}
	if hooks == nil {
		hooks = observability.NoopStorageHooks{}
	}
	return &FetchChain{backends: backends, logger: logger, hooks: hooks}
}

// Backends returns the backends of the chain in order.
func (c *FetchChain) Backends() []Backend { return c.backends }

// FetchItem returns the local path of item, trying each backend in order.
//
// DoesNotExist and TemporaryFailure fall through to the next backend. A
// PermanentFailure aborts with an error wrapping the backend failure. A
// NegativeCacheHit stops the chain and reports the item as missing
// without error. When every backend answered DoesNotExist, the miss is
// recorded in session; a temporary failure anywhere suppresses the record.
//
// A missing item is reported as ("", nil).
func (c *FetchChain) FetchItem(ctx context.Context, ref artifact.Ref, item string, publish Publisher, session *Session) (string, error) {
	temporary := false
	for _, b := range c.backends {
		start := time.Now()
		path, err := b.Fetch(ctx, ref, item, publish)
		outcome := Classify(err)
		c.hooks.OnFetch(ctx, b.Name(), outcome.String(), time.Since(start))

		switch outcome {
		case Found:
			c.logger.Debug("fetched", "item", item, "backend", b.Name())
			return path, nil
		case DoesNotExist:
			c.logger.Debug("not in backend", "item", item, "backend", b.Name())
		case TemporaryFailure:
			temporary = true
			c.logger.Debug("temporary failure", "item", item, "backend", b.Name(), "err", err)
		case NegativeCacheHit:
			c.logger.Debug("negative cache hit", "item", item, "backend", b.Name())
			return "", nil
		default:
			return "", errors.Wrap(errors.ErrCodePermanentIO, err, "fetch %s of %s from %s", item, ref, b.Name())
		}
	}
	if !temporary && session != nil {
		session.AddMissing(ref, item)
	}
	return "", nil
}

// FetchMetaData returns the metadata descriptor of ref, or nil when no
// backend has one.
//
// Each backend is first asked for the native descriptor. When it does not
// hold one, the same backend is asked for a Maven POM, which is translated
// and published back through publish so later runs find a native
// descriptor. Outcomes are classified like [FetchChain.FetchItem]; a full
// miss records the metadata item in session.
func (c *FetchChain) FetchMetaData(ctx context.Context, ref artifact.Ref, publish Publisher, session *Session) (*artifact.Metadata, error) {
	temporary := false
	for _, b := range c.backends {
		start := time.Now()
		md, err := c.fetchMetaData(ctx, b, ref, publish)
		outcome := Classify(err)
		c.hooks.OnFetch(ctx, b.Name(), outcome.String(), time.Since(start))

		switch outcome {
		case Found:
			return md, nil
		case DoesNotExist:
		case TemporaryFailure:
			temporary = true
			c.logger.Debug("temporary failure", "item", ref.MetaDataItem(), "backend", b.Name(), "err", err)
		case NegativeCacheHit:
			c.logger.Debug("negative cache hit", "item", ref.MetaDataItem(), "backend", b.Name())
			return nil, nil
		default:
			return nil, errors.Wrap(errors.ErrCodePermanentIO, err, "fetch metadata of %s from %s", ref, b.Name())
		}
	}
	if !temporary && session != nil {
		session.AddMissing(ref, ref.MetaDataItem())
	}
	return nil, nil
}

func (c *FetchChain) fetchMetaData(ctx context.Context, b Backend, ref artifact.Ref, publish Publisher) (*artifact.Metadata, error) {
	path, err := b.Fetch(ctx, ref, ref.MetaDataItem(), publish)
	if err == nil {
		md, err := metadata.ReadFile(path)
		if err != nil {
			return nil, Permanent(err)
		}
		return md, nil
	}
	if Classify(err) != DoesNotExist {
		return nil, err
	}

	pom, err := b.Fetch(ctx, ref, ref.POMItem(), publish)
	if err != nil {
		if Classify(err) == NegativeCacheHit {
			// A negative POM marker only says the POM is missing.
			return nil, ErrDoesNotExist
		}
		return nil, err
	}
	md, err := metadata.ReadPOM(pom)
	if err != nil {
		return nil, Permanent(err)
	}
	c.logger.Debug("translated POM", "artifact", ref, "backend", b.Name())

	if publish != nil {
		if err := c.publishTranslation(ctx, ref, md, publish); err != nil {
			c.logger.Warn("could not cache translated metadata", "artifact", ref, "err", err)
		}
	}
	return md, nil
}

func (c *FetchChain) publishTranslation(ctx context.Context, ref artifact.Ref, md *artifact.Metadata, publish Publisher) error {
	dir, err := os.MkdirTemp("", "depot-amd-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, ref.MetaDataItem())
	if err := metadata.WriteFile(file, md); err != nil {
		return err
	}
	_, err = publish.Publish(ctx, ref, ref.MetaDataItem(), file)
	return err
}

// DetermineVersion returns the highest version any backend reports for a
// symbolic reference, or "" when none can answer. Temporary failures are
// skipped; permanent failures abort.
func (c *FetchChain) DetermineVersion(ctx context.Context, ref artifact.Ref) (string, error) {
	best := ""
	for _, b := range c.backends {
		v, err := b.DetermineVersion(ctx, ref)
		switch Classify(err) {
		case Found:
			best = version.Max(best, v)
		case TemporaryFailure:
			c.logger.Debug("temporary failure determining version", "artifact", ref, "backend", b.Name(), "err", err)
		case DoesNotExist, NegativeCacheHit:
		default:
			return "", errors.Wrap(errors.ErrCodePermanentIO, err, "determine version of %s from %s", ref, b.Name())
		}
	}
	return best, nil
}

func discardLogger() *log.Logger { return log.New(io.Discard) }
