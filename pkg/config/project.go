package config

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/depot/pkg/artifact"
	cachebackend "github.com/matzehuels/depot/pkg/backend/cache"
	"github.com/matzehuels/depot/pkg/cache"
	"github.com/matzehuels/depot/pkg/deps"
	"github.com/matzehuels/depot/pkg/errors"
)

// Sets parses the dependency groups into named dependency sets. Every
// malformed coordinate is reported.
func (f *File) Sets() (map[string]*artifact.Set, error) {
	var errs errors.List
	sets := make(map[string]*artifact.Set)
	for i, g := range f.Dependencies {
		if g.Type == "" {
			errs.Addf("dependencies[%d]: type is required", i)
			continue
		}
		name := g.Set
		if name == "" {
			name = DefaultSet
		}
		set, ok := sets[name]
		if !ok {
			set = artifact.NewSet()
			sets[name] = set
		}
		group := set.Group(g.Type)
		for _, coord := range g.Artifacts {
			ref, err := artifact.ParseRef(coord)
			if err != nil {
				errs.Addf("dependencies[%d]: %s", i, errors.UserMessage(err))
				continue
			}
			group.Refs = append(group.Refs, ref)
		}
	}
	if err := errs.Err(errors.ErrCodeInvalidConfig, "invalid dependencies"); err != nil {
		return nil, err
	}
	return sets, nil
}

// Set returns the dependency set called name. A missing default set is
// empty; any other missing set is an error.
func (f *File) Set(name string) (*artifact.Set, error) {
	if name == "" {
		name = DefaultSet
	}
	sets, err := f.Sets()
	if err != nil {
		return nil, err
	}
	if s, ok := sets[name]; ok {
		return s, nil
	}
	if name == DefaultSet {
		return artifact.NewSet(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown dependency set %q", name)
}

// ProjectSpec returns the project declaration together with its dependency
// sets.
func (f *File) ProjectSpec() (deps.Project, error) {
	if f.Project.Name == "" || f.Project.Version == "" {
		return deps.Project{}, errors.New(errors.ErrCodeInvalidConfig, "project name and version are required")
	}
	sets, err := f.Sets()
	if err != nil {
		return deps.Project{}, err
	}
	return deps.Project{
		Group:        f.Project.Group,
		Name:         f.Project.Name,
		Version:      f.Project.Version,
		Dependencies: sets,
	}, nil
}

// PublicationSpecs returns the declared publications with files resolved
// against the project directory. A publication without dependencies uses
// the default set when one is declared.
func (f *File) PublicationSpecs() []deps.Publication {
	hasDefault := false
	for _, g := range f.Dependencies {
		if g.Set == "" || g.Set == DefaultSet {
			hasDefault = true
			break
		}
	}
	out := make([]deps.Publication, 0, len(f.Publications))
	for _, p := range f.Publications {
		file := p.File
		if file != "" && !filepath.IsAbs(file) {
			file = filepath.Join(f.Dir, file)
		}
		set := p.Dependencies
		if set == "" && hasDefault {
			set = DefaultSet
		}
		out = append(out, deps.Publication{
			Name:          p.Name,
			Type:          p.Type,
			File:          file,
			Compatibility: p.Compatibility,
			Dependencies:  set,
		})
	}
	return out
}

// DefaultListingDir returns the directory of the file listing cache, next
// to the default artifact cache.
func DefaultListingDir() string {
	return filepath.Join(filepath.Dir(cachebackend.DefaultDir()), "listings")
}

// OpenListings opens the listing cache selected by the file.
func (f *File) OpenListings(ctx context.Context) (cache.Cache, error) {
	l := f.Listings
	switch l.Kind {
	case "", "file":
		dir := l.Dir
		if dir == "" {
			dir = DefaultListingDir()
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open listing cache %s", dir)
		}
		return c, nil
	case "redis":
		if l.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "redis listing cache needs a url")
		}
		c, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: l.URL, Prefix: l.Prefix})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect listing cache: %v", err)
		}
		return c, nil
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown listing cache kind %q", l.Kind)
	}
}
