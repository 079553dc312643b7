package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"time"

	"gorm.io/gorm"
)

// ReferralBonusRate is the flat share of an approved package payment
// credited to the referrer.
const ReferralBonusRate = 0.20

// CalculateReferralBonus computes the referrer's cut of a package payment.
func CalculateReferralBonus(packageAmount float64) float64 {
	if packageAmount <= 0 {
		return 0
	}
	return packageAmount * ReferralBonusRate
}

// payReferralBonus credits the referrer inside the payment-approval
// transaction and records the bonus as paid. The unique index on PaymentID
// makes a second attempt for the same payment fail rather than double-pay.
func payReferralBonus(tx *gorm.DB, referrerID uint, payment *models.PaymentNotification, pkg mining.Package) error {
	var referrer models.User
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&referrer, referrerID).Error; err != nil {
		// A vanished referrer should not block the payment approval.
		return nil
	}

	bonus := CalculateReferralBonus(payment.Amount)
	if bonus <= 0 {
		return nil
	}

	now := time.Now()
	balanceBefore := referrer.Balance

	result := tx.Model(&models.User{}).
		Where("id = ? AND version = ?", referrer.ID, referrer.Version).
		Updates(map[string]interface{}{
			"balance":           referrer.Balance + bonus,
			"referral_earnings": referrer.ReferralEarnings + bonus,
			"version":           referrer.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	record := &models.ReferralBonus{
		ReferrerID:     referrer.ID,
		ReferredUserID: payment.UserID,
		PaymentID:      payment.ID,
		PackageID:      pkg.ID,
		PackageAmount:  payment.Amount,
		BonusAmount:    bonus,
		Status:         models.ReferralBonusStatusPaid,
		PaidAt:         &now,
	}
	if err := tx.Create(record).Error; err != nil {
		return err
	}

	if err := recordTransaction(tx, &models.Transaction{
		UserID:        referrer.ID,
		Amount:        bonus,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore + bonus,
		Reason:        "Referral bonus: " + paymentReason(payment),
		Operator:      "system",
		Type:          models.TransactionTypeReferralBonus,
	}); err != nil {
		return err
	}

	InvalidateUserCache(referrer.ID)
	return nil
}

// FindReferralBonuses lists bonuses earned by a referrer, newest first.
func FindReferralBonuses(referrerID uint) ([]models.ReferralBonus, error) {
	var bonuses []models.ReferralBonus
	err := database.DB.Where("referrer_id = ?", referrerID).
		Order("created_at desc").Find(&bonuses).Error
	return bonuses, err
}

// CountReferrals counts users who registered with this user's code.
func CountReferrals(referrerID uint) (int64, error) {
	var count int64
	err := database.DB.Model(&models.User{}).
		Where("referred_by = ?", referrerID).Count(&count).Error
	return count, err
}
