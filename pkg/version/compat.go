package version

import (
	"maps"
	"slices"
)

// Built-in compatibility tags. A tag names the widest kind of release that
// stays compatible: "minor" accepts any version with the same major
// component, "patch" any version with the same major and minor components.
const (
	CompatMajor     = "major"
	CompatMinor     = "minor"
	CompatPatch     = "patch"
	CompatIdentical = "identical"
)

// Comparator decides which of two requested versions of the same artifact
// to use. Best returns the winning version, or ok=false when the two
// versions cannot be reconciled.
type Comparator interface {
	Best(a, b string) (winner string, ok bool)
}

// ComparatorFunc adapts a function to the [Comparator] interface.
type ComparatorFunc func(a, b string) (string, bool)

// Best calls f(a, b).
func (f ComparatorFunc) Best(a, b string) (string, bool) { return f(a, b) }

// Registry maps compatibility tags to comparators. The untagged policy
// applies when no link carries a tag and only accepts identical versions.
//
// The zero value is not usable - use [NewRegistry].
type Registry struct {
	comparators map[string]Comparator
	untagged    Comparator
}

// NewRegistry creates a registry holding the built-in "major", "minor",
// "patch" and "identical" policies.
func NewRegistry() *Registry {
	return &Registry{
		comparators: map[string]Comparator{
			CompatMajor:     sameComponents(0),
			CompatMinor:     sameComponents(1),
			CompatPatch:     sameComponents(2),
			CompatIdentical: ComparatorFunc(identical),
		},
		untagged: ComparatorFunc(identical),
	}
}

// Register adds or replaces the comparator for tag. Registering the empty
// tag replaces the untagged policy.
func (r *Registry) Register(tag string, c Comparator) {
	if tag == "" {
		r.untagged = c
		return
	}
	r.comparators[tag] = c
}

// Lookup returns the comparator for tag. The empty tag always resolves to
// the untagged policy.
func (r *Registry) Lookup(tag string) (Comparator, bool) {
	if tag == "" {
		return r.untagged, true
	}
	c, ok := r.comparators[tag]
	return c, ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	return slices.Sorted(maps.Keys(r.comparators))
}

func identical(a, b string) (string, bool) {
	if a == b {
		return a, true
	}
	return "", false
}

// sameComponents accepts two versions when their first n base components
// match and picks the higher one. n == 0 accepts any pair of valid versions.
func sameComponents(n int) Comparator {
	return ComparatorFunc(func(a, b string) (string, bool) {
		if a == b {
			return a, true
		}
		va, err := Parse(a)
		if err != nil {
			return "", false
		}
		vb, err := Parse(b)
		if err != nil {
			return "", false
		}
		ca := []uint64{va.Major(), va.Minor(), va.Patch()}
		cb := []uint64{vb.Major(), vb.Minor(), vb.Patch()}
		if !slices.Equal(ca[:n], cb[:n]) {
			return "", false
		}
		if Compare(vb, va) > 0 {
			return b, true
		}
		return a, true
	})
}
