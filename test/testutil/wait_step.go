package testutil

import (
	"fmt"
	"time"

	"github.com/arloliu/jointown/types"
)

// WaitStep reads snapshots from a subscription until one reaches the given step.
//
// Parameters:
//   - ch: Subscription channel from World.Subscribe
//   - step: Step number to wait for
//   - timeout: Maximum time to wait
//
// Returns:
//   - types.Snapshot: First snapshot with Step >= step
//   - error: Timeout or closed channel
//
// Example:
//
//	ch, unsubscribe := w.Subscribe()
//	defer unsubscribe()
//	snap, err := testutil.WaitStep(ch, 3, time.Second)
//	require.NoError(t, err)
func WaitStep(ch <-chan types.Snapshot, step int, timeout time.Duration) (types.Snapshot, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return types.Snapshot{}, fmt.Errorf("subscription closed before step %d", step)
			}
			if snap.Step >= step {
				return snap, nil
			}
		case <-timer.C:
			return types.Snapshot{}, fmt.Errorf("timeout after %v waiting for step %d", timeout, step)
		}
	}
}
