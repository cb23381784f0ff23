package workflow

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/observability"
)

// PublishChain sends every operation to all of its backends.
type PublishChain struct {
	backends []Backend
	logger   *log.Logger
	hooks    observability.StorageHooks
}

// NewPublishChain creates a chain over backends. A nil logger discards
// output and nil hooks record nothing.
func NewPublishChain(logger *log.Logger, hooks observability.StorageHooks, backends ...Backend) *PublishChain {
	if logger == nil {
		logger = discardLogger()
	}
	if hooks == nil {
		hooks = observability.NoopStorageHooks{}
	}
	return &PublishChain{backends: backends, logger: logger, hooks: hooks}
}

// Backends returns the backends of the chain in order.
func (c *PublishChain) Backends() []Backend { return c.backends }

// Publish stores file as item of ref in every backend and returns the
// first local path reported. Backends that do not support publishing are
// skipped. Failures are collected and returned once every backend was
// called.
func (c *PublishChain) Publish(ctx context.Context, ref artifact.Ref, item, file string) (string, error) {
	var (
		result string
		errs   errors.List
	)
	for _, b := range c.backends {
		path, err := b.Publish(ctx, ref, item, file)
		if stderrors.Is(err, ErrUnsupported) {
			continue
		}
		c.hooks.OnPublish(ctx, b.Name(), err)
		if err != nil {
			errs.Addf("%s: %v", b.Name(), err)
			continue
		}
		c.logger.Debug("published", "item", item, "backend", b.Name())
		if result == "" {
			result = path
		}
	}
	return result, errs.Err(errors.ErrCodePublish, "publish "+item+" of "+ref.String())
}

// PublishNegative records a confirmed miss of item in every backend by
// publishing an empty negative marker. Failures are logged and ignored.
func (c *PublishChain) PublishNegative(ctx context.Context, ref artifact.Ref, item string) {
	dir, err := os.MkdirTemp("", "depot-neg-")
	if err != nil {
		c.logger.Debug("could not create negative marker", "item", item, "err", err)
		return
	}
	defer os.RemoveAll(dir)

	marker := artifact.NegativeItem(item)
	file := filepath.Join(dir, marker)
	if err := os.WriteFile(file, nil, 0644); err != nil {
		c.logger.Debug("could not create negative marker", "item", item, "err", err)
		return
	}
	for _, b := range c.backends {
		if _, err := b.Publish(ctx, ref, marker, file); err != nil && !stderrors.Is(err, ErrUnsupported) {
			c.logger.Debug("could not publish negative marker", "item", marker, "backend", b.Name(), "err", err)
		}
	}
}

// PublishNegativeMetaData records a confirmed metadata miss of ref.
func (c *PublishChain) PublishNegativeMetaData(ctx context.Context, ref artifact.Ref) {
	c.PublishNegative(ctx, ref, ref.MetaDataItem())
}

// Delete removes item of ref from every backend and reports whether any
// backend deleted something.
func (c *PublishChain) Delete(ctx context.Context, ref artifact.Ref, item string) (bool, error) {
	var (
		deleted bool
		errs    errors.List
	)
	for _, b := range c.backends {
		ok, err := b.Delete(ctx, ref, item)
		if stderrors.Is(err, ErrUnsupported) {
			continue
		}
		if err != nil {
			errs.Addf("%s: %v", b.Name(), err)
			continue
		}
		deleted = deleted || ok
	}
	return deleted, errs.Err(errors.ErrCodeDelete, "delete "+item+" of "+ref.String())
}

// DeleteIntegrationBuilds removes every integration build of ref's base
// version from every backend.
func (c *PublishChain) DeleteIntegrationBuilds(ctx context.Context, ref artifact.Ref) error {
	var errs errors.List
	for _, b := range c.backends {
		err := b.DeleteIntegrationBuilds(ctx, ref)
		if err != nil && !stderrors.Is(err, ErrUnsupported) {
			errs.Addf("%s: %v", b.Name(), err)
		}
	}
	return errs.Err(errors.ErrCodeDelete, "delete integration builds of "+ref.String())
}

// Workflow pairs the chains used by one resolution, publication or
// deletion.
type Workflow struct {
	Fetch   *FetchChain
	Publish *PublishChain
}

var _ Publisher = (*PublishChain)(nil)
