// Package testutil provides shared test helpers for jointown packages.
//
// Examples of utilities that belong here:
//   - Invariant checks over World snapshots (conservation, domain respect, eviction priority)
//   - Waiting helpers for snapshot subscriptions
//   - Random domain generators for property tests
//
// Note: For NATS server setup, use the github.com/arloliu/jointown/testing package.
package testutil
