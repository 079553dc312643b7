package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartMining(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("miner@example.com")

	session, err := StartMining(user.ID, "btc")
	assert.NoError(t, err)
	assert.True(t, session.IsActive)
	assert.Equal(t, "btc", session.Coin)
	assert.Equal(t, float64(1000), session.HashRate, "trial miners get the base hash rate")
	assert.Zero(t, session.TotalEarned)

	active, err := ActiveSessions(user.ID)
	assert.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestStartMining_PackageHashRate(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createPackageUser("pro@example.com", "professional", time.Now().AddDate(0, 0, 30))

	session, err := StartMining(user.ID, "eth")
	assert.NoError(t, err)
	// eth base 2500 x professional hash multiplier 3.5
	assert.Equal(t, float64(8750), session.HashRate)
	assert.Equal(t, "professional", session.PackageID)
}

func TestStartMining_ClosesPreviousSession(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("restart@example.com")

	first, err := StartMining(user.ID, "btc")
	assert.NoError(t, err)

	second, err := StartMining(user.ID, "doge")
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	active, err := ActiveSessions(user.ID)
	assert.NoError(t, err)
	assert.Len(t, active, 1, "starting again leaves exactly one active session")
	assert.Equal(t, second.ID, active[0].ID)

	var stale models.MiningSession
	database.DB.First(&stale, "id = ?", first.ID)
	assert.False(t, stale.IsActive)
	assert.NotNil(t, stale.EndTime)
}

func TestStartMining_Rejections(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("rejected@example.com")

	_, err := StartMining(user.ID, "xyzcoin")
	assert.ErrorIs(t, err, ErrCoinNotFound)

	_, err = StartMining(9999, "btc")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Banned users cannot start regardless of trial state.
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("is_banned", true)
	_, err = StartMining(user.ID, "btc")
	assert.ErrorIs(t, err, ErrMiningNotAllowed)
}

func TestStartMining_TrialExhausted(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("capped@example.com")
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_trial_earnings", mining.TrialEarningsCap)

	_, err := StartMining(user.ID, "btc")
	assert.ErrorIs(t, err, ErrMiningNotAllowed)
}

func TestStartMining_Cooldown(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("cooldown@example.com")

	ReconcileMgr.mu.Lock()
	ReconcileMgr.lastTick[user.ID] = time.Now()
	ReconcileMgr.mu.Unlock()

	_, err := StartMining(user.ID, "btc")
	assert.ErrorIs(t, err, ErrStartCooldown)

	// An old tick does not block.
	ReconcileMgr.mu.Lock()
	ReconcileMgr.lastTick[user.ID] = time.Now().Add(-time.Minute)
	ReconcileMgr.mu.Unlock()

	_, err = StartMining(user.ID, "btc")
	assert.NoError(t, err)
}

func TestStopMining_Idempotent(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("stopper@example.com")

	session, err := StartMining(user.ID, "ltc")
	assert.NoError(t, err)

	assert.NoError(t, StopMining(user.ID, session.ID, ""))

	var stopped models.MiningSession
	database.DB.First(&stopped, "id = ?", session.ID)
	assert.False(t, stopped.IsActive)
	assert.NotNil(t, stopped.EndTime)
	firstEnd := *stopped.EndTime

	// Stopping again neither errors nor moves the end time.
	assert.NoError(t, StopMining(user.ID, session.ID, ""))
	database.DB.First(&stopped, "id = ?", session.ID)
	assert.Equal(t, firstEnd, *stopped.EndTime)

	assert.ErrorIs(t, StopMining(user.ID, "missing-id", ""), ErrSessionNotFound)
}

func TestStopAllSessions(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("multi@example.com")
	createActiveSession(user.ID, "btc", time.Now(), 1000)
	createActiveSession(user.ID, "eth", time.Now(), 2500)

	assert.NoError(t, StopAllSessions(user.ID, models.StopReasonMultipleSessions))

	active, err := ActiveSessions(user.ID)
	assert.NoError(t, err)
	assert.Empty(t, active)

	var sessions []models.MiningSession
	database.DB.Where("user_id = ?", user.ID).Find(&sessions)
	for _, s := range sessions {
		assert.Equal(t, models.StopReasonMultipleSessions, s.StopReason)
	}
}
