package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/models"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrWithdrawalNotFound         = errors.New("withdrawal request not found")
	ErrWithdrawalAlreadyProcessed = errors.New("withdrawal request already processed")
	ErrWithdrawalBelowMinimum     = errors.New("withdrawal amount is below the minimum")
	ErrInsufficientBalance        = errors.New("insufficient balance")
)

// MinWithdrawalAmount is the smallest withdrawal a user may request, in USD.
const MinWithdrawalAmount = 10.0

// RequestWithdrawal creates a pending withdrawal. The balance is checked at
// request time for early feedback but only deducted at approval; the
// approval re-checks it under lock.
func RequestWithdrawal(userID uint, amount float64, walletAddress string) (*models.WithdrawalRequest, error) {
	if amount < MinWithdrawalAmount {
		return nil, ErrWithdrawalBelowMinimum
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	request := &models.WithdrawalRequest{
		UserID:        userID,
		Amount:        amount,
		WalletAddress: walletAddress,
		Status:        models.WithdrawalStatusPending,
	}

	if err := database.DB.Create(request).Error; err != nil {
		return nil, err
	}

	return request, nil
}

// WithdrawalFilter defines criteria for listing withdrawal requests.
type WithdrawalFilter struct {
	UserID *uint
	Status *string
	Page   int
	Limit  int
}

func FindWithdrawals(filter WithdrawalFilter) ([]models.WithdrawalRequest, int64, error) {
	var withdrawals []models.WithdrawalRequest
	var total int64

	query := database.DB.Model(&models.WithdrawalRequest{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&withdrawals).Error; err != nil {
		return nil, 0, err
	}

	return withdrawals, total, nil
}

// ApproveWithdrawal deducts the amount from the user's balance and marks the
// request approved, as one transaction. The only path that lowers a balance.
func ApproveWithdrawal(requestID uint, operatorID uint, operatorName, notes string) error {
	var userID uint

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var request models.WithdrawalRequest
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}

		if request.Status != models.WithdrawalStatusPending {
			return ErrWithdrawalAlreadyProcessed
		}

		var user models.User
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&user, request.UserID).Error; err != nil {
			return err
		}
		userID = user.ID

		if user.Balance < request.Amount {
			return ErrInsufficientBalance
		}

		now := time.Now()
		request.Status = models.WithdrawalStatusApproved
		request.ProcessedAt = &now
		request.ProcessedBy = operatorID
		request.AdminNotes = notes
		request.UpdatedAt = now
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		balanceBefore := user.Balance
		result := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]interface{}{
				"balance": user.Balance - request.Amount,
				"version": user.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOptimisticLock
		}

		return recordTransaction(tx, &models.Transaction{
			UserID:        user.ID,
			Amount:        -request.Amount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceBefore - request.Amount,
			Reason:        fmt.Sprintf("Withdrawal to %s", request.WalletAddress),
			Operator:      operatorName,
			OperatorID:    operatorID,
			Type:          models.TransactionTypeWithdrawalDebit,
		})
	})
	if err != nil {
		return err
	}

	InvalidateUserCache(userID)
	return nil
}

// RejectWithdrawal marks a pending request rejected. The balance is
// untouched; nothing was ever reserved.
func RejectWithdrawal(requestID uint, operatorID uint, notes string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var request models.WithdrawalRequest
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}

		if request.Status != models.WithdrawalStatusPending {
			return ErrWithdrawalAlreadyProcessed
		}

		now := time.Now()
		request.Status = models.WithdrawalStatusRejected
		request.ProcessedAt = &now
		request.ProcessedBy = operatorID
		request.AdminNotes = notes
		request.UpdatedAt = now

		return tx.Save(&request).Error
	})
}
