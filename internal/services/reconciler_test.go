package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconcileSession_AppliesEarnings(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("accrual@example.com")
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickApplied, outcome)

	var updated models.MiningSession
	database.DB.First(&updated, "id = ?", session.ID)
	assert.True(t, updated.IsActive)
	// btc earns 0.001/h at base rate; ten minutes in.
	assert.InDelta(t, 0.001/6.0, updated.TotalEarned, 1e-6)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.InDelta(t, updated.TotalEarned, freshUser.Balance, 1e-9)
	assert.InDelta(t, updated.TotalEarned, freshUser.TotalTrialEarnings, 1e-9, "trial accruals count against the allowance")
	assert.Equal(t, 2, freshUser.Version)

	var ledger models.Transaction
	err = database.DB.Where("user_id = ?", user.ID).Last(&ledger).Error
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionTypeMiningAccrual, ledger.Type)
	assert.Equal(t, session.ID, ledger.SessionID)
	assert.InDelta(t, updated.TotalEarned, ledger.Amount, 1e-9)
	assert.Equal(t, float64(0), ledger.BalanceBefore)
	assert.NotEmpty(t, ledger.Hash)
}

func TestReconcileSession_PackageUserSkipsTrialAllowance(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createPackageUser("paid@example.com", "starter", time.Now().AddDate(0, 0, 30))
	start := time.Now().Add(-5 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 2000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickApplied, outcome)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	// starter: hash ratio 2.0 x earning multiplier 1.5 over five minutes.
	assert.InDelta(t, 0.001*2.0*1.5/12.0, freshUser.Balance, 1e-6)
	assert.Zero(t, freshUser.TotalTrialEarnings)
}

func TestReconcileSession_SecondTickCreditsOnlyDelta(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("delta@example.com")
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickApplied, outcome)

	var afterFirst models.User
	database.DB.First(&afterFirst, user.ID)

	// An immediate second tick finds an unchanged (or negligibly grown)
	// total and must not re-credit the full amount.
	_, err = ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)

	var afterSecond models.User
	database.DB.First(&afterSecond, user.ID)
	assert.InDelta(t, afterFirst.Balance, afterSecond.Balance, 1e-6)
}

func TestReconcileSession_MultipleActiveSessions(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("dupes@example.com")
	start := time.Now().Add(-10 * time.Minute)
	s1 := createActiveSession(user.ID, "btc", start, 1000)
	s2 := createActiveSession(user.ID, "eth", start, 2500)

	outcome, err := ReconcileSession(context.Background(), s1.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	active, _ := ActiveSessions(user.ID)
	assert.Empty(t, active, "every session is terminated, none credited")

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Zero(t, freshUser.Balance)

	for _, id := range []string{s1.ID, s2.ID} {
		var s models.MiningSession
		database.DB.First(&s, "id = ?", id)
		assert.Equal(t, models.StopReasonMultipleSessions, s.StopReason)
	}
}

func TestReconcileSession_StartMismatch(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("drift@example.com")
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	observed := start.Add(-5 * time.Minute)
	outcome, err := ReconcileSession(context.Background(), session.ID, observed)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", session.ID)
	assert.Equal(t, models.StopReasonStartMismatch, s.StopReason)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Zero(t, freshUser.Balance)
}

func TestReconcileSession_PackageExpired(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createPackageUser("expired@example.com", "starter", time.Now().Add(-time.Hour))
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 2000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", session.ID)
	assert.Equal(t, models.StopReasonPackageExpired, s.StopReason)
}

func TestReconcileSession_DurationGuards(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("duration@example.com")

	// Session older than the 24h ceiling.
	oldStart := time.Now().Add(-25 * time.Hour)
	tooOld := createActiveSession(user.ID, "btc", oldStart, 1000)
	outcome, err := ReconcileSession(context.Background(), tooOld.ID, oldStart)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", tooOld.ID)
	assert.Equal(t, models.StopReasonMaxDuration, s.StopReason)

	// Session claiming to start in the future.
	futureStart := time.Now().Add(time.Hour)
	future := createActiveSession(user.ID, "btc", futureStart, 1000)
	outcome, err = ReconcileSession(context.Background(), future.ID, futureStart)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	var s2 models.MiningSession
	database.DB.First(&s2, "id = ?", future.ID)
	assert.Equal(t, models.StopReasonNegativeTime, s2.StopReason)
}

func TestReconcileSession_RegressionSkips(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("regression@example.com")
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	// Stored total above anything ten minutes can produce.
	database.DB.Model(&models.MiningSession{}).Where("id = ?", session.ID).
		Update("total_earned", 0.01)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickSkipped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", session.ID)
	assert.True(t, s.IsActive, "a regression skips the tick without terminating")
	assert.Equal(t, 0.01, s.TotalEarned)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Zero(t, freshUser.Balance)
}

func TestReconcileSession_BurstSkips(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("burst@example.com")
	// Two hours of backlog in a single tick exceeds the per-tick ceiling
	// of half the base hourly rate.
	start := time.Now().Add(-2 * time.Hour)
	session := createActiveSession(user.ID, "btc", start, 1000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickSkipped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", session.ID)
	assert.True(t, s.IsActive)
	assert.Zero(t, s.TotalEarned)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Zero(t, freshUser.Balance)
}

func TestReconcileSession_TrialCap(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("trialcap@example.com")
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_trial_earnings", mining.TrialEarningsCap)

	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", session.ID)
	assert.Equal(t, models.StopReasonTrialLimit, s.StopReason)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Zero(t, freshUser.Balance, "nothing is credited past the cap")
}

func TestReconcileSession_TrialExpired(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("trialover@example.com")
	past := time.Now().Add(-time.Hour)
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("trial_end_date", past)

	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)

	outcome, err := ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	var s models.MiningSession
	database.DB.First(&s, "id = ?", session.ID)
	assert.Equal(t, models.StopReasonTrialExpired, s.StopReason)
}

func TestReconcileSession_TerminalStates(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("terminal@example.com")

	// Unknown session id.
	outcome, err := ReconcileSession(context.Background(), "no-such-session", time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	// Already-stopped session.
	start := time.Now().Add(-10 * time.Minute)
	session := createActiveSession(user.ID, "btc", start, 1000)
	database.DB.Model(&models.MiningSession{}).Where("id = ?", session.ID).
		Update("is_active", false)

	outcome, err = ReconcileSession(context.Background(), session.ID, start)
	assert.NoError(t, err)
	assert.Equal(t, TickStopped, outcome)

	// Session referencing a coin missing from the catalog.
	orphan := createActiveSession(user.ID, "vanished", start, 1000)
	outcome, err = ReconcileSession(context.Background(), orphan.ID, start)
	assert.Error(t, err)
	assert.Equal(t, TickSkipped, outcome)
}
