package domain

import "time"

// EditLockWindow is how long a lock counts as live after its last activity.
const EditLockWindow = 10 * time.Minute

// EditLock records which session last edited a project. One row per
// project, created with it. A lock whose LatestActivity is older than
// EditLockWindow is stale and may be claimed by another editor.
type EditLock struct {
	ProjectID      int64
	SessionID      int64
	LatestActivity time.Time
}

// Live reports whether the lock is still held at time now.
func (l EditLock) Live(now time.Time) bool {
	return now.Sub(l.LatestActivity) < EditLockWindow
}
