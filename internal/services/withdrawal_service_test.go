package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestWithdrawal(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("casher@example.com")
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", 100.0)

	_, err := RequestWithdrawal(user.ID, 5, "bc1qwallet")
	assert.ErrorIs(t, err, ErrWithdrawalBelowMinimum)

	_, err = RequestWithdrawal(user.ID, 500, "bc1qwallet")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = RequestWithdrawal(9999, 50, "bc1qwallet")
	assert.ErrorIs(t, err, ErrUserNotFound)

	request, err := RequestWithdrawal(user.ID, 50, "bc1qwallet")
	assert.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusPending, request.Status)

	// Requesting does not move the balance.
	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Equal(t, 100.0, freshUser.Balance)
}

func TestApproveWithdrawal(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("payout@example.com")
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", 100.0)

	request, err := RequestWithdrawal(user.ID, 60, "bc1qwallet")
	assert.NoError(t, err)

	err = ApproveWithdrawal(request.ID, 1, "admin@example.com", "sent")
	assert.NoError(t, err)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Equal(t, 40.0, freshUser.Balance)

	var processed models.WithdrawalRequest
	database.DB.First(&processed, request.ID)
	assert.Equal(t, models.WithdrawalStatusApproved, processed.Status)
	assert.NotNil(t, processed.ProcessedAt)

	var ledger models.Transaction
	err = database.DB.Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeWithdrawalDebit).
		First(&ledger).Error
	assert.NoError(t, err)
	assert.Equal(t, -60.0, ledger.Amount)
	assert.Equal(t, 100.0, ledger.BalanceBefore)
	assert.Equal(t, 40.0, ledger.BalanceAfter)

	// A second approval must not deduct again.
	err = ApproveWithdrawal(request.ID, 1, "admin@example.com", "")
	assert.ErrorIs(t, err, ErrWithdrawalAlreadyProcessed)

	database.DB.First(&freshUser, user.ID)
	assert.Equal(t, 40.0, freshUser.Balance)
}

func TestApproveWithdrawal_BalanceDrainedMeanwhile(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("drained@example.com")
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", 100.0)

	request, err := RequestWithdrawal(user.ID, 80, "bc1qwallet")
	assert.NoError(t, err)

	// The balance dropped between request and review.
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", 10.0)

	err = ApproveWithdrawal(request.ID, 1, "admin@example.com", "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var pending models.WithdrawalRequest
	database.DB.First(&pending, request.ID)
	assert.Equal(t, models.WithdrawalStatusPending, pending.Status, "a failed approval leaves the request reviewable")
}

func TestRejectWithdrawal(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTrialUser("refused@example.com")
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", 100.0)

	request, err := RequestWithdrawal(user.ID, 50, "bc1qwallet")
	assert.NoError(t, err)

	err = RejectWithdrawal(request.ID, 1, "wallet flagged")
	assert.NoError(t, err)

	var processed models.WithdrawalRequest
	database.DB.First(&processed, request.ID)
	assert.Equal(t, models.WithdrawalStatusRejected, processed.Status)
	assert.Equal(t, "wallet flagged", processed.AdminNotes)

	var freshUser models.User
	database.DB.First(&freshUser, user.ID)
	assert.Equal(t, 100.0, freshUser.Balance)

	assert.ErrorIs(t, RejectWithdrawal(9999, 1, ""), ErrWithdrawalNotFound)
}
