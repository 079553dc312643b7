package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCoinNotFound     = errors.New("invalid coin selected")
	ErrMiningNotAllowed = errors.New("mining not available, check your trial status or upgrade your package")
	ErrStartCooldown    = errors.New("please wait a few seconds before starting a new session")
	ErrSessionNotFound  = errors.New("mining session not found")
)

// startCooldown blocks rapid restarts right after a reconciliation tick.
const startCooldown = 10 * time.Second

// StartMining begins a session for the user on the given coin. Any session
// still open for the user is terminated first, so after a successful start
// exactly one session is active.
func StartMining(userID uint, coinID string) (*models.MiningSession, error) {
	// Always read the user from the store, never the cache: eligibility must
	// see admin-side writes (bans, package changes) immediately.
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	if !mining.CanMine(&user, now) {
		return nil, ErrMiningNotAllowed
	}

	coin, ok := mining.CoinByID(coinID)
	if !ok {
		return nil, ErrCoinNotFound
	}

	if last, ok := ReconcileMgr.LastTickForUser(userID); ok && now.Sub(last) < startCooldown {
		return nil, ErrStartCooldown
	}

	session := &models.MiningSession{
		ID:          uuid.New().String(),
		UserID:      userID,
		Coin:        coinID,
		StartTime:   now,
		HashRate:    mining.EffectiveHashRate(coin.BaseHashRate, user.ActivePackage),
		TotalEarned: 0,
		IsActive:    true,
		PackageID:   user.ActivePackage,
		LastUpdated: now,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Close every open session for the user, not just the newest one.
		// The store may hold more than one if a prior stop failed halfway.
		closeAll := map[string]interface{}{
			"is_active":    false,
			"end_time":     now,
			"last_updated": now,
		}
		if err := tx.Model(&models.MiningSession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Updates(closeAll).Error; err != nil {
			return err
		}

		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}

	ReconcileMgr.Track(session)

	zap.L().Info("mining session started",
		zap.Uint("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("coin", coinID),
		zap.Float64("hash_rate", session.HashRate))

	return session, nil
}

// StopMining terminates a session. Stopping an already-stopped session is a
// no-op: overlapping guards may race to stop the same session and must not
// error loudly or double-apply anything.
func StopMining(userID uint, sessionID, reason string) error {
	var session models.MiningSession
	err := database.DB.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if !session.IsActive {
		ReconcileMgr.Untrack(sessionID)
		return nil
	}

	if err := terminateSession(database.DB, &session, reason); err != nil {
		return err
	}

	ReconcileMgr.Untrack(sessionID)

	zap.L().Info("mining session stopped",
		zap.Uint("user_id", userID),
		zap.String("session_id", sessionID),
		zap.String("reason", reason))

	return nil
}

// StopAllSessions terminates every active session for a user. Used by the
// multi-session guard and by admin bans.
func StopAllSessions(userID uint, reason string) error {
	var sessions []models.MiningSession
	if err := database.DB.Where("user_id = ? AND is_active = ?", userID, true).Find(&sessions).Error; err != nil {
		return err
	}

	for i := range sessions {
		if err := terminateSession(database.DB, &sessions[i], reason); err != nil {
			return err
		}
		ReconcileMgr.Untrack(sessions[i].ID)
	}

	return nil
}

// ActiveSessions returns the sessions currently marked active for a user.
// The single-active-session invariant makes this a zero-or-one-element list
// in healthy state; more than one element is itself an anomaly.
func ActiveSessions(userID uint) ([]models.MiningSession, error) {
	var sessions []models.MiningSession
	err := database.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_time desc").Find(&sessions).Error
	return sessions, err
}

// SessionHistory returns recent sessions, newest first.
func SessionHistory(userID uint, limit int) ([]models.MiningSession, error) {
	var sessions []models.MiningSession
	err := database.DB.Where("user_id = ?", userID).
		Order("start_time desc").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// terminateSession flips a session to its terminal state. Guarded on
// is_active so concurrent terminations settle on a single end time.
func terminateSession(db *gorm.DB, session *models.MiningSession, reason string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"is_active":    false,
		"end_time":     now,
		"last_updated": now,
	}
	if reason != "" {
		updates["stop_reason"] = reason
	}

	return db.Model(&models.MiningSession{}).
		Where("id = ? AND is_active = ?", session.ID, true).
		Updates(updates).Error
}
