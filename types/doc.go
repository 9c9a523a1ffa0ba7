// Package types provides the core type definitions shared by the jointown packages.
//
// Keeping these types in their own package lets the internal tiers, the
// ownership table and the root World depend on one vocabulary without import
// cycles. The root package re-exports the public parts.
//
// Key types:
//   - PersonID: identity of a person (possible owner)
//   - Domain: ordered, immutable set of object ids a person may own
//   - Tier: priority tier of a person (normal or lowprio)
//   - Snapshot: read-only view of the distribution after a step
//   - Logger, MetricsCollector: observability interfaces
package types
