// Package workflow chains storage backends into fetch and publish
// pipelines with classified outcomes and negative caching.
//
// # Backends
//
// A [Backend] stores artifacts in the shared layout described by package
// artifact. Every fetch attempt is classified into exactly one [Outcome]:
//
//   - Found: the item is available locally; the chain stops
//   - DoesNotExist: the backend does not hold the item; try the next one
//   - TemporaryFailure: the backend may succeed later; try the next one
//   - PermanentFailure: abort the whole fetch with an error
//   - NegativeCacheHit: a previous run confirmed the miss; stop without error
//
// Backends report outcomes through errors: nil, [ErrDoesNotExist],
// [ErrNegativeCache], a *[TemporaryError] or anything else, which counts as
// permanent.
//
// # Chains
//
// A [FetchChain] tries backends in order and stops at the first hit. A
// [PublishChain] calls every backend. Misses confirmed by every backend are
// recorded in a [Session] so the caller can publish negative markers once
// the pass completes.
//
// # Registry
//
// Backends are constructed by kind through a [Registry] of factories, each
// decoding its own typed configuration struct.
package workflow
