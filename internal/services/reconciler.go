package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// startMismatchTolerance is how far the stored session start may drift
	// from the start time observed when the session was registered.
	startMismatchTolerance = 60 * time.Second

	// burstFactor bounds a single tick's credit at burstFactor x the coin's
	// base hourly rate. Tighter than the session-lifetime ceiling; catches
	// clock jumps between ticks.
	burstFactor = 0.5
)

// TickOutcome describes what a reconciliation tick did with a session.
type TickOutcome int

const (
	// TickApplied means earnings were computed and credited.
	TickApplied TickOutcome = iota
	// TickSkipped means the tick wrote nothing but the session stays active.
	TickSkipped
	// TickStopped means the session was terminated (or found already
	// terminated) and should no longer be tracked.
	TickStopped
)

// ReconcileSession runs the anomaly guards for one session and, when all
// pass, credits the earnings delta since the last tick to the session and
// the user in a single transaction. observedStart is the start time the
// manager recorded when it began tracking the session.
func ReconcileSession(ctx context.Context, sessionID string, observedStart time.Time) (TickOutcome, error) {
	db := database.DB.WithContext(ctx)

	var session models.MiningSession
	if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TickStopped, nil
		}
		return TickSkipped, err
	}
	if !session.IsActive {
		return TickStopped, nil
	}

	// Guard: more than one active session for this user means duplicate
	// writers. Stop all of them, credit none.
	var activeCount int64
	if err := db.Model(&models.MiningSession{}).
		Where("user_id = ? AND is_active = ?", session.UserID, true).
		Count(&activeCount).Error; err != nil {
		return TickSkipped, err
	}
	if activeCount > 1 {
		zap.L().Warn("multiple active sessions detected",
			zap.Uint("user_id", session.UserID),
			zap.Int64("count", activeCount))
		if err := StopAllSessions(session.UserID, models.StopReasonMultipleSessions); err != nil {
			return TickSkipped, err
		}
		return TickStopped, nil
	}

	// The user record is re-read every tick: bans, package approvals and
	// manual adjustments arrive from the admin side concurrently.
	var user models.User
	if err := db.First(&user, session.UserID).Error; err != nil {
		return TickSkipped, err
	}

	now := time.Now()

	// Guard: the stored start time drifted from the one observed at start.
	if !observedStart.IsZero() {
		drift := session.StartTime.Sub(observedStart)
		if drift < 0 {
			drift = -drift
		}
		if drift > startMismatchTolerance {
			return stopWith(db, &session, models.StopReasonStartMismatch)
		}
	}

	// Guard: package ran out. Terminates silently; the stop reason on the
	// session is enough, repeated notifications would spam the user.
	if user.ActivePackage != "" && user.PackageExpiresAt != nil && now.After(*user.PackageExpiresAt) {
		return stopWith(db, &session, models.StopReasonPackageExpired)
	}

	elapsed := now.Sub(session.StartTime).Hours()

	if elapsed > mining.MaxSessionHours {
		return stopWith(db, &session, models.StopReasonMaxDuration)
	}
	if elapsed < 0 {
		return stopWith(db, &session, models.StopReasonNegativeTime)
	}

	coin, ok := mining.CoinByID(session.Coin)
	if !ok {
		return TickSkipped, fmt.Errorf("session %s references unknown coin %q", session.ID, session.Coin)
	}

	newTotal := mining.Accrue(coin.BaseEarning, session.HashRate, coin.BaseHashRate, elapsed, user.ActivePackage)

	// Guard: should be unreachable given the accrual clamp; kept in case the
	// accrual function changes.
	if newTotal > coin.BaseEarning*mining.SanityMultiplier*elapsed {
		return stopWith(db, &session, models.StopReasonUnrealistic)
	}

	// Guard: a computed total below the stored one is a transient
	// inconsistency, not an attack. Skip the write, keep the session.
	if newTotal < session.TotalEarned {
		return TickSkipped, nil
	}

	delta := newTotal - session.TotalEarned

	if user.OnTrial() {
		if user.TotalTrialEarnings+delta >= mining.TrialEarningsCap {
			return stopWith(db, &session, models.StopReasonTrialLimit)
		}
		if user.TrialEndDate == nil || now.After(*user.TrialEndDate) {
			return stopWith(db, &session, models.StopReasonTrialExpired)
		}
	}

	// Guard: single-tick burst ceiling.
	if delta > coin.BaseEarning*burstFactor {
		zap.L().Warn("earnings burst rejected",
			zap.String("session_id", session.ID),
			zap.Float64("delta", delta),
			zap.Float64("ceiling", coin.BaseEarning*burstFactor))
		return TickSkipped, nil
	}

	if delta == 0 {
		return TickSkipped, nil
	}

	if err := applyEarnings(db, session.ID, user.ID, newTotal, now); err != nil {
		if errors.Is(err, ErrOptimisticLock) {
			// Another writer won this round; the next tick recomputes
			// against its result.
			return TickSkipped, nil
		}
		return TickSkipped, err
	}

	return TickApplied, nil
}

// applyEarnings writes the new session total and credits the delta to the
// user's balance (and trial earnings while on trial) as one transaction.
// Session, user and ledger row commit together or not at all.
func applyEarnings(db *gorm.DB, sessionID string, userID uint, newTotal float64, now time.Time) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.MiningSession
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&session, "id = ?", sessionID).Error; err != nil {
			return err
		}
		if !session.IsActive {
			return nil
		}

		// Recompute the delta against the locked row: the value read before
		// the transaction may be stale.
		delta := newTotal - session.TotalEarned
		if delta <= 0 {
			return nil
		}

		var user models.User
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&user, userID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.MiningSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"total_earned": newTotal,
				"last_updated": now,
			}).Error; err != nil {
			return err
		}

		balanceBefore := user.Balance
		updates := map[string]interface{}{
			"balance": user.Balance + delta,
			"version": user.Version + 1,
		}
		if user.OnTrial() {
			updates["total_trial_earnings"] = user.TotalTrialEarnings + delta
		}

		result := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOptimisticLock
		}

		return recordTransaction(tx, &models.Transaction{
			UserID:        user.ID,
			Amount:        delta,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceBefore + delta,
			Reason:        fmt.Sprintf("Mining accrual (%s)", session.Coin),
			Operator:      "system",
			Type:          models.TransactionTypeMiningAccrual,
			SessionID:     sessionID,
		})
	})
	if err != nil {
		return err
	}

	InvalidateUserCache(userID)
	return nil
}

func stopWith(db *gorm.DB, session *models.MiningSession, reason string) (TickOutcome, error) {
	if err := terminateSession(db, session, reason); err != nil {
		return TickSkipped, err
	}

	zap.L().Info("session terminated by guard",
		zap.String("session_id", session.ID),
		zap.Uint("user_id", session.UserID),
		zap.String("reason", reason))

	return TickStopped, nil
}
