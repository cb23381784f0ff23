package workflow

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/cache"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/observability"
)

// Decoder decodes the kind-specific settings of one backend entry of a
// workflow file into v, which is a pointer to the factory's config struct.
type Decoder func(v any) error

// Env carries the shared dependencies handed to every backend factory.
type Env struct {
	Logger *log.Logger
	Hooks  observability.Hooks

	// Cache holds remote directory listings. Nil disables caching.
	Cache cache.Cache
}

// Factory builds a backend from its decoded settings.
type Factory func(env Env, decode Decoder) (Backend, error)

// Typed adapts a constructor taking a concrete config type C into a
// [Factory]. The config is decoded into a zero C before build is called.
func Typed[C any](build func(env Env, cfg C) (Backend, error)) Factory {
	return func(env Env, decode Decoder) (Backend, error) {
		var cfg C
		if decode != nil {
			if err := decode(&cfg); err != nil {
				return nil, err
			}
		}
		return build(env, cfg)
	}
}

// Registry maps backend kinds to factories. It is populated explicitly at
// startup and is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for kind, replacing any previous one.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build creates a backend of kind from the settings exposed by decode.
func (r *Registry) Build(kind string, env Env, decode Decoder) (Backend, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown backend kind %q (known: %v)", kind, r.Kinds())
	}
	b, err := f(env, decode)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s backend: %v", kind, err)
	}
	return b, nil
}

// Entry is one backend declaration of a workflow file.
type Entry struct {
	Kind   string
	Decode Decoder
}

// Spec lists the backends of the fetch and publish chains in order.
type Spec struct {
	Fetch   []Entry
	Publish []Entry
}

// BuildWorkflow creates both chains of spec. Every invalid entry is reported, not
// only the first.
func (r *Registry) BuildWorkflow(spec Spec, env Env) (*Workflow, error) {
	var errs errors.List
	build := func(section string, entries []Entry) []Backend {
		var out []Backend
		for i, e := range entries {
			b, err := r.Build(e.Kind, env, e.Decode)
			if err != nil {
				errs.Addf("%s[%d] (%s): %s", section, i, e.Kind, errors.UserMessage(err))
				continue
			}
			out = append(out, b)
		}
		return out
	}
	fetch := build("fetch", spec.Fetch)
	publish := build("publish", spec.Publish)
	if err := errs.Err(errors.ErrCodeInvalidConfig, "invalid workflow"); err != nil {
		return nil, err
	}
	if len(fetch) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "workflow has no fetch backends")
	}
	return &Workflow{
		Fetch:   NewFetchChain(env.Logger, env.Hooks.Storage, fetch...),
		Publish: NewPublishChain(env.Logger, env.Hooks.Storage, publish...),
	}, nil
}

// RegisterBackend registers an already constructed backend under kind.
// Every Build of kind returns b and ignores its settings.
func (r *Registry) RegisterBackend(kind string, b Backend) {
	r.Register(kind, func(Env, Decoder) (Backend, error) { return b, nil })
}
