package deps

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
	"github.com/matzehuels/depot/pkg/observability"
	"github.com/matzehuels/depot/pkg/version"
)

// DefaultMaxDepth bounds how deep transitive expansion may go before the
// build is aborted.
const DefaultMaxDepth = 50

// Options configures a [Service].
type Options struct {
	MaxDepth    int                 // Maximum expansion depth (default: 50)
	Logger      *log.Logger         // Diagnostics (default: discard)
	Comparators *version.Registry   // Compatibility policies (default: built-ins)
	Hooks       observability.Hooks // Metrics hooks (default: no-ops)
	Now         func() time.Time    // Clock for integration build ids (default: time.Now)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Comparators == nil {
		opts.Comparators = version.NewRegistry()
	}
	opts.Hooks = opts.Hooks.WithDefaults()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// Listener observes artifacts as a [Service] finds, publishes and cleans
// them. Listener panics are recovered and logged.
type Listener interface {
	// ArtifactFound is called once per resolved artifact with its local path.
	ArtifactFound(file string, ref artifact.Ref)
	// ArtifactPublished is called after every item of a publication is stored.
	ArtifactPublished(ref artifact.Ref)
	// ArtifactCleaned is called when at least one item of ref was deleted.
	ArtifactCleaned(ref artifact.Ref)
}

// NoopListener ignores every event. Embed it to implement a subset.
type NoopListener struct{}

func (NoopListener) ArtifactFound(string, artifact.Ref) {}
func (NoopListener) ArtifactPublished(artifact.Ref)     {}
func (NoopListener) ArtifactCleaned(artifact.Ref)       {}

func notify(logger *log.Logger, listeners []Listener, event func(Listener)) {
	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("listener panicked", "panic", r)
				}
			}()
			event(l)
		}()
	}
}
