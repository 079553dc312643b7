package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconcileManager_TrackUntrack(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("tracked@example.com")
	session := createActiveSession(user.ID, "btc", time.Now(), 1000)

	rm := NewReconcileManager()
	rm.Track(&session)

	rm.mu.RLock()
	_, tracked := rm.sessions[session.ID]
	rm.mu.RUnlock()
	assert.True(t, tracked)

	// Tracking the same session twice keeps the original entry.
	rm.Track(&session)
	rm.mu.RLock()
	assert.Len(t, rm.sessions, 1)
	rm.mu.RUnlock()

	rm.Untrack(session.ID)
	rm.mu.RLock()
	assert.Empty(t, rm.sessions)
	rm.mu.RUnlock()
}

func TestReconcileManager_RestoreActiveSessions(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("survivor@example.com")
	alive := createActiveSession(user.ID, "btc", time.Now(), 1000)

	dead := createActiveSession(user.ID, "eth", time.Now(), 2500)
	StopMining(user.ID, dead.ID, "")

	rm := NewReconcileManager()
	rm.restoreActiveSessions()

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, hasAlive := rm.sessions[alive.ID]
	_, hasDead := rm.sessions[dead.ID]
	assert.True(t, hasAlive, "active sessions are picked up after a restart")
	assert.False(t, hasDead)
}

func TestReconcileManager_TickOne(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("ticked@example.com")
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	rm := NewReconcileManager()
	rm.Track(&session)

	rm.mu.RLock()
	ts := rm.sessions[session.ID]
	rm.mu.RUnlock()

	rm.tickOne(ts)

	last, ok := rm.LastTickForUser(user.ID)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), last, time.Second)

	// A tick landing inside the throttle window is a no-op.
	before := ts.LastTick
	rm.tickOne(ts)
	assert.Equal(t, before, ts.LastTick)
}

func TestReconcileManager_TickOneUntracksStopped(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("doomed@example.com")
	// Past the duration ceiling; the tick terminates and untracks it.
	start := time.Now().Add(-25 * time.Hour)
	session := createActiveSession(user.ID, "btc", start, 1000)

	rm := NewReconcileManager()
	rm.Track(&session)

	rm.mu.RLock()
	ts := rm.sessions[session.ID]
	rm.mu.RUnlock()

	rm.tickOne(ts)

	rm.mu.RLock()
	_, stillTracked := rm.sessions[session.ID]
	rm.mu.RUnlock()
	assert.False(t, stillTracked)
}
