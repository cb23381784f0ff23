// Package config loads depot project files.
//
// A project file declares the artifact a build produces, the dependency
// sets it needs, the files it publishes and the backends of its workflow.
// TOML and YAML are supported and selected by file extension:
//
//	[project]
//	group = "org.acme"
//	name = "core"
//	version = "1.0"
//
//	[[dependencies]]
//	type = "compile"
//	artifacts = ["org.acme:util:{latest}", "org.acme:api:2.0-{integration}:jar"]
//
//	[[publications]]
//	type = "jar"
//	file = "build/core.jar"
//	compatibility = "minor"
//
//	[[fetch]]
//	kind = "cache"
//
//	[[fetch]]
//	kind = "url"
//	url = "https://repo.example.com/artifacts"
//
//	[[publish]]
//	kind = "cache"
//
// Backend entries carry a "kind" plus the settings of that kind. The
// settings are decoded lazily by the backend factory registered for the
// kind, so this package knows nothing about individual backends.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/workflow"
)

// DefaultFile is the project file looked up when none is given.
const DefaultFile = "depot.toml"

// DefaultSet names the dependency set used when a group or publication
// does not name one.
const DefaultSet = "default"

// ProjectSection declares the artifact family the project publishes into.
type ProjectSection struct {
	Group   string `toml:"group" yaml:"group"`
	Name    string `toml:"name" yaml:"name"`
	Version string `toml:"version" yaml:"version"`
}

// DependencyGroup is one group of one dependency set. Groups of the same
// set keep their declaration order.
type DependencyGroup struct {
	Set       string   `toml:"set" yaml:"set"`
	Type      string   `toml:"type" yaml:"type"`
	Artifacts []string `toml:"artifacts" yaml:"artifacts"`
}

// PublicationSection declares one published file.
type PublicationSection struct {
	Name          string `toml:"name" yaml:"name"`
	Type          string `toml:"type" yaml:"type"`
	File          string `toml:"file" yaml:"file"`
	Compatibility string `toml:"compatibility" yaml:"compatibility"`
	Dependencies  string `toml:"dependencies" yaml:"dependencies"`
}

// ListingSection selects the cache for remote directory listings.
type ListingSection struct {
	Kind   string `toml:"kind" yaml:"kind"` // "file" (default), "redis" or "none"
	Dir    string `toml:"dir" yaml:"dir"`
	URL    string `toml:"url" yaml:"url"`
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// File is a loaded project file.
type File struct {
	Project      ProjectSection
	Dependencies []DependencyGroup
	Publications []PublicationSection
	Listings     ListingSection

	// Workflow holds the backend entries in declaration order. Settings
	// are decoded when the workflow is built.
	Workflow workflow.Spec

	// Dir is the directory relative paths are resolved against.
	Dir string
}

type kindOnly struct {
	Kind string `toml:"kind" yaml:"kind"`
}

type tomlFile struct {
	Project      ProjectSection       `toml:"project"`
	Dependencies []DependencyGroup    `toml:"dependencies"`
	Publications []PublicationSection `toml:"publications"`
	Listings     ListingSection       `toml:"listings"`
	Fetch        []toml.Primitive     `toml:"fetch"`
	Publish      []toml.Primitive     `toml:"publish"`
}

type yamlFile struct {
	Project      ProjectSection       `yaml:"project"`
	Dependencies []DependencyGroup    `yaml:"dependencies"`
	Publications []PublicationSection `yaml:"publications"`
	Listings     ListingSection       `yaml:"listings"`
	Fetch        []yaml.Node          `yaml:"fetch"`
	Publish      []yaml.Node          `yaml:"publish"`
}

// Load reads the project file at path. The format follows the extension:
// ".toml", or ".yaml" / ".yml".
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve %s", path)
	}

	var f *File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		f, err = ParseTOML(data)
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported project file format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s: %v", path, err)
	}
	f.Dir = filepath.Dir(abs)
	return f, nil
}

// ParseTOML parses a TOML project file. Relative paths stay relative.
func ParseTOML(data []byte) (*File, error) {
	var raw tomlFile
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		return nil, err
	}
	f := &File{
		Project:      raw.Project,
		Dependencies: raw.Dependencies,
		Publications: raw.Publications,
		Listings:     raw.Listings,
	}
	entries := func(prims []toml.Primitive) ([]workflow.Entry, error) {
		out := make([]workflow.Entry, 0, len(prims))
		for _, p := range prims {
			var k kindOnly
			if err := md.PrimitiveDecode(p, &k); err != nil {
				return nil, err
			}
			out = append(out, workflow.Entry{
				Kind:   k.Kind,
				Decode: func(v any) error { return md.PrimitiveDecode(p, v) },
			})
		}
		return out, nil
	}
	if f.Workflow.Fetch, err = entries(raw.Fetch); err != nil {
		return nil, err
	}
	if f.Workflow.Publish, err = entries(raw.Publish); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseYAML parses a YAML project file. Relative paths stay relative.
func ParseYAML(data []byte) (*File, error) {
	var raw yamlFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	f := &File{
		Project:      raw.Project,
		Dependencies: raw.Dependencies,
		Publications: raw.Publications,
		Listings:     raw.Listings,
	}
	entries := func(nodes []yaml.Node) ([]workflow.Entry, error) {
		out := make([]workflow.Entry, 0, len(nodes))
		for i := range nodes {
			n := &nodes[i]
			var k kindOnly
			if err := n.Decode(&k); err != nil {
				return nil, err
			}
			out = append(out, workflow.Entry{Kind: k.Kind, Decode: n.Decode})
		}
		return out, nil
	}
	var err error
	if f.Workflow.Fetch, err = entries(raw.Fetch); err != nil {
		return nil, err
	}
	if f.Workflow.Publish, err = entries(raw.Publish); err != nil {
		return nil, err
	}
	return f, nil
}

// DefaultWorkflow fetches from and publishes to the local artifact cache.
func DefaultWorkflow() workflow.Spec {
	return workflow.Spec{
		Fetch:   []workflow.Entry{{Kind: "cache"}},
		Publish: []workflow.Entry{{Kind: "cache"}},
	}
}

// WorkflowSpec returns the declared workflow, or [DefaultWorkflow] when the
// file declares no fetch backends.
func (f *File) WorkflowSpec() workflow.Spec {
	if len(f.Workflow.Fetch) == 0 {
		return DefaultWorkflow()
	}
	return f.Workflow
}
