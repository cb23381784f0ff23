// Package pkg provides the libraries behind depot, a resolver and store for
// versioned build artifacts.
//
// # Overview
//
// Depot turns a project's declared dependencies into one conflict-free set
// of artifact versions and fetches the files through a chain of storage
// backends. The pkg directory is organized into four areas:
//
//  1. Model: [artifact] (identities, references, dependency sets), [dag]
//     (the arena graph), [version] (parsing and compatibility policies)
//  2. Resolution: [deps] (graph building, symbolic versions, reconciliation,
//     publishing)
//  3. Storage: [workflow] (fetch and publish chains), [backend] (built-in
//     backends), [metadata], [checksum], [cache]
//  4. Surfaces: [config] (project files), [server] (HTTP repository),
//     [render/nodelink] (graph diagrams), [observability] (metrics hooks)
//
// # Architecture
//
// The typical data flow of a resolution:
//
//	depot.toml
//	     ↓
//	[config] package (dependency sets + workflow spec)
//	     ↓
//	[deps] package (build graph, resolve symbolic versions, reconcile)
//	     ↓
//	[workflow] package (fetch chain, negative markers)
//	     ↓
//	local file paths
//
// [artifact]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/artifact
// [dag]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/dag
// [version]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/version
// [deps]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/deps
// [workflow]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/workflow
// [backend]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/backend
// [metadata]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/metadata
// [checksum]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/checksum
// [cache]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/server
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/depot/pkg/observability
package pkg
