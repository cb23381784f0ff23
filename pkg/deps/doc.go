// Package deps resolves, publishes and cleans artifact dependencies.
//
// # Overview
//
// A project declares its dependencies as an [artifact.Set]: ordered groups
// such as "compile" or "run", each holding artifact references. Resolution
// turns that declaration into one concrete file per artifact, fetched
// through the backends of a [workflow.Workflow].
//
// # Resolution
//
// [Service.Resolve] runs three stages:
//
//  1. Graph construction expands the set below a synthetic project root.
//     Symbolic versions ("{latest}", "1.0-{integration}") are bound first
//     (see [ResolveVersions]); the metadata descriptor of every dependency
//     is then fetched and its own dependencies are expanded when transitive
//     resolution is requested. Each exact reference is expanded once, and a
//     dependency that reappears among its own ancestors is reported as a
//     cycle.
//  2. Reconciliation ([CompatibilityResolver]) makes sure every artifact is
//     requested in a single version. The compatibility tag stored in an
//     artifact's metadata selects a [version.Comparator]; the winner
//     replaces every other request and the dependencies contributed only by
//     losing versions are cut off.
//  3. Fetching locates the primary file of every artifact left in the
//     graph, plus its source companion when available. Items every backend
//     confirmed missing are published as negative markers so later runs
//     skip them.
//
// Problems are collected rather than returned one at a time: a failed
// stage reports every conflict or missing artifact in a single
// [errors.ListError]. Permanent I/O failures abort immediately.
//
// # Publishing
//
// [Service.Publish] stores build outputs as releases or as timestamped
// integration builds, writing checksum sidecars and metadata descriptors
// alongside. [Service.Delete] removes everything a dependency set resolves
// to.
//
// # Listeners
//
// A [Listener] passed to a call is told about every artifact found,
// published or cleaned. Listeners run synchronously; a panicking listener
// is logged and skipped.
package deps
