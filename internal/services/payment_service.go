package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPackageNotFound         = errors.New("package not found")
	ErrPaymentNotFound         = errors.New("payment notification not found")
	ErrPaymentAlreadyProcessed = errors.New("payment notification already processed")
)

// SubmitPaymentNotification records a user's claim that an off-chain payment
// was made. Nothing is credited until an admin approves it.
func SubmitPaymentNotification(userID uint, packageID string, amount float64, txHash string, details datatypes.JSON) (*models.PaymentNotification, error) {
	if _, ok := mining.PackageByID(packageID); !ok {
		return nil, ErrPackageNotFound
	}

	notification := &models.PaymentNotification{
		ID:        strings.ReplaceAll(uuid.New().String(), "-", ""),
		UserID:    userID,
		PackageID: packageID,
		Amount:    amount,
		TxHash:    txHash,
		Status:    models.PaymentStatusPending,
		Details:   details,
	}

	if err := database.DB.Create(notification).Error; err != nil {
		return nil, err
	}

	return notification, nil
}

// PaymentFilter defines criteria for listing payment notifications.
type PaymentFilter struct {
	UserID *uint
	Status *string
	Page   int
	Limit  int
}

func FindPayments(filter PaymentFilter) ([]models.PaymentNotification, int64, error) {
	var payments []models.PaymentNotification
	var total int64

	query := database.DB.Model(&models.PaymentNotification{})

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
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// ApprovePayment marks a pending notification approved, activates the
// package on the paying user for its full duration, and pays the referral
// bonus when the user was referred. All of it commits as one transaction;
// re-approving is rejected by the status check.
func ApprovePayment(paymentID string, operatorID uint, operatorName, notes string) error {
	var payerID uint

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.PaymentNotification
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if payment.Status != models.PaymentStatusPending {
			return ErrPaymentAlreadyProcessed
		}

		pkg, ok := mining.PackageByID(payment.PackageID)
		if !ok {
			return ErrPackageNotFound
		}

		now := time.Now()
		payment.Status = models.PaymentStatusApproved
		payment.ApprovedAt = &now
		payment.ApprovedBy = operatorID
		payment.AdminNotes = notes
		payment.UpdatedAt = now
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&user, payment.UserID).Error; err != nil {
			return err
		}
		payerID = user.ID

		expiresAt := now.AddDate(0, 0, pkg.Duration)
		result := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]interface{}{
				"active_package":     pkg.ID,
				"package_expires_at": expiresAt,
				"version":            user.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOptimisticLock
		}

		if user.ReferredBy != 0 {
			if err := payReferralBonus(tx, user.ReferredBy, &payment, pkg); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	InvalidateUserCache(payerID)
	return nil
}

// RejectPayment marks a pending notification rejected. Nothing is credited.
func RejectPayment(paymentID string, operatorID uint, notes string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.PaymentNotification
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if payment.Status != models.PaymentStatusPending {
			return ErrPaymentAlreadyProcessed
		}

		now := time.Now()
		payment.Status = models.PaymentStatusRejected
		payment.ApprovedBy = operatorID
		payment.AdminNotes = notes
		payment.UpdatedAt = now

		return tx.Save(&payment).Error
	})
}

func paymentReason(payment *models.PaymentNotification) string {
	return fmt.Sprintf("Package payment %s (%s)", payment.ID, payment.PackageID)
}
