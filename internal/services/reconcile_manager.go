package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/models"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// tickInterval is the fixed reconciliation cadence.
	tickInterval = 30 * time.Second
	// tickThrottle skips a tick that would land too soon after the previous
	// one. Avoids redundant writes, not a security control.
	tickThrottle = 5 * time.Second
	// tickTimeout bounds one tick's store round-trips. A stalled tick is
	// abandoned and the session retried on the next scheduled tick.
	tickTimeout = 15 * time.Second
)

// trackedSession is the manager's view of one active session. StartTime is
// the start observed when tracking began; the reconciler compares it against
// the stored value to detect external tampering with the session record.
type trackedSession struct {
	SessionID string
	UserID    uint
	StartTime time.Time
	LastTick  time.Time
}

// ReconcileManager drives the periodic reconciliation of active mining
// sessions. It owns all tracking state; nothing else holds subscription
// handles, and entries are released deterministically on stop.
type ReconcileManager struct {
	mu       sync.RWMutex
	sessions map[string]*trackedSession
	lastTick map[uint]time.Time

	// processing serializes ticks per session: a tick still in flight causes
	// the next scheduled one to be skipped, never run concurrently.
	processing sync.Map

	stopChan chan struct{}
	stopOnce sync.Once
}

var ReconcileMgr *ReconcileManager

func init() {
	ReconcileMgr = NewReconcileManager()
}

func NewReconcileManager() *ReconcileManager {
	return &ReconcileManager{
		sessions: make(map[string]*trackedSession),
		lastTick: make(map[uint]time.Time),
		stopChan: make(chan struct{}),
	}
}

// Track registers a session for periodic reconciliation.
func (rm *ReconcileManager) Track(s *models.MiningSession) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.sessions[s.ID]; exists {
		return
	}
	rm.sessions[s.ID] = &trackedSession{
		SessionID: s.ID,
		UserID:    s.UserID,
		StartTime: s.StartTime,
	}
}

// Untrack releases a session's tracking entry.
func (rm *ReconcileManager) Untrack(sessionID string) {
	rm.mu.Lock()
	delete(rm.sessions, sessionID)
	rm.mu.Unlock()
}

// LastTickForUser reports when the user's session was last reconciled.
// The start cooldown is measured against this.
func (rm *ReconcileManager) LastTickForUser(userID uint) (time.Time, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	t, ok := rm.lastTick[userID]
	return t, ok
}

// Start restores tracking for sessions left active across a restart, then
// runs the tick loop until Stop is called.
func (rm *ReconcileManager) Start() {
	rm.restoreActiveSessions()

	zap.L().Info("reconcile manager started", zap.Duration("interval", tickInterval))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.tickAll()
		case <-rm.stopChan:
			return
		}
	}
}

// Stop terminates the tick loop. In-flight ticks run to completion; their
// effects are validated again by the guards on the next start.
func (rm *ReconcileManager) Stop() {
	rm.stopOnce.Do(func() { close(rm.stopChan) })
}

func (rm *ReconcileManager) restoreActiveSessions() {
	var sessions []models.MiningSession
	if err := database.DB.Where("is_active = ?", true).Find(&sessions).Error; err != nil {
		zap.L().Error("failed to restore active sessions", zap.Error(err))
		return
	}

	for i := range sessions {
		rm.Track(&sessions[i])
	}

	if len(sessions) > 0 {
		zap.L().Info("restored active sessions", zap.Int("count", len(sessions)))
	}
}

func (rm *ReconcileManager) tickAll() {
	rm.mu.RLock()
	entries := make([]*trackedSession, 0, len(rm.sessions))
	for _, ts := range rm.sessions {
		entries = append(entries, ts)
	}
	rm.mu.RUnlock()

	for _, ts := range entries {
		go rm.tickOne(ts)
	}
}

func (rm *ReconcileManager) tickOne(ts *trackedSession) {
	rm.mu.RLock()
	last := ts.LastTick
	rm.mu.RUnlock()

	if !last.IsZero() && time.Since(last) < tickThrottle {
		return
	}

	if _, inFlight := rm.processing.LoadOrStore(ts.SessionID, struct{}{}); inFlight {
		return
	}
	defer rm.processing.Delete(ts.SessionID)

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	outcome, err := ReconcileSession(ctx, ts.SessionID, ts.StartTime)
	if err != nil {
		zap.L().Warn("reconcile tick failed",
			zap.String("session_id", ts.SessionID),
			zap.Error(err))
		return
	}

	now := time.Now()
	rm.mu.Lock()
	ts.LastTick = now
	rm.lastTick[ts.UserID] = now
	rm.mu.Unlock()

	if outcome == TickStopped {
		rm.Untrack(ts.SessionID)
	}
}
