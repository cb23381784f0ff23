// Package backend registers the built-in storage backends.
//
//	r := workflow.NewRegistry()
//	backend.Register(r)
//	wf, err := r.BuildWorkflow(spec, env)
//
// Built-in kinds:
//
//   - "cache": local filesystem cache (package cache)
//   - "url": read-only HTTP repository (package url)
package backend

import (
	"github.com/matzehuels/depot/pkg/backend/cache"
	"github.com/matzehuels/depot/pkg/backend/url"
	"github.com/matzehuels/depot/pkg/workflow"
)

// Register adds every built-in backend kind to r.
func Register(r *workflow.Registry) {
	r.Register(cache.Kind, cache.Factory)
	r.Register(url.Kind, url.Factory)
}

// NewRegistry returns a registry holding the built-in backends.
func NewRegistry() *workflow.Registry {
	r := workflow.NewRegistry()
	Register(r)
	return r
}
