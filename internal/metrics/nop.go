// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/jointown/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default collector of a World.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	w, err := jointown.New(10, jointown.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// WorldMetrics implementation

// RecordStep discards the step metric.
func (n *NopMetrics) RecordStep(_ /* action */ string, _ /* duration */ float64) {}

// RecordPersons discards the person count metric.
func (n *NopMetrics) RecordPersons(_ types.Tier, _ /* count */ int) {}

// RecordFreeObjects discards the free object count metric.
func (n *NopMetrics) RecordFreeObjects(_ /* count */ int) {}

// RecordEvictions discards the eviction metric.
func (n *NopMetrics) RecordEvictions(_ /* count */ int) {}

// RecordPersonNotFound discards the unknown removal metric.
func (n *NopMetrics) RecordPersonNotFound() {}

// RecordSnapshotDropped discards the dropped snapshot metric.
func (n *NopMetrics) RecordSnapshotDropped() {}

// TierMetrics implementation

// RecordExchangeChain discards the exchange chain metric.
func (n *NopMetrics) RecordExchangeChain(_ types.Tier, _ /* hops */ int) {}
