package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jointown/types"
)

func TestNopMetrics(t *testing.T) {
	m := NewNop()
	require.NotNil(t, m)

	require.NotPanics(t, func() {
		m.RecordStep("add", 0.001)
		m.RecordPersons(types.TierNormal, 3)
		m.RecordPersons(types.TierLowprio, 0)
		m.RecordFreeObjects(7)
		m.RecordEvictions(2)
		m.RecordPersonNotFound()
		m.RecordSnapshotDropped()
		m.RecordExchangeChain(types.TierLowprio, 4)
	})
}
