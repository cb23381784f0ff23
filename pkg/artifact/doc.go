// Package artifact defines the data model shared by resolution, storage
// and publication: artifact identities, versioned references, dependency
// groups and sets, and the graph that links them.
//
// # Identities and References
//
// An [Identity] names an artifact family across versions by its group,
// project, name and type. A [Ref] adds a version, which is either a
// literal ("1.2.0"), the symbolic [Latest] token, or a base version
// followed by [IntegrationSuffix] that resolves to the newest integration
// build of that base.
//
// # Storage Layout
//
// Every backend agrees on the same relative layout:
//
//	<group with dots as slashes>/<project>/<version>/<item>
//
// Item names are derived from the reference:
//
//	<name>-<version>.<type>         primary file      [Ref.FileItem]
//	<name>-<version>.<type>.amd     metadata          [Ref.MetaDataItem]
//	<name>-<version>.<type>.amd.neg negative metadata [Ref.NegativeMetaDataItem]
//	<name>-<version>-src.<type>     source companion  [Ref.SourceItem]
//
// Any item may be paired with a ".md5" checksum sidecar, and a ".neg"
// marker records a confirmed miss.
package artifact
