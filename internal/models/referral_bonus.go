package models

import "time"

const (
	ReferralBonusStatusPending = "pending"
	ReferralBonusStatusPaid    = "paid"
)

// ReferralBonus records the flat-percentage bonus credited to a referrer when
// a payment by a referred user is approved. Exactly one row per approved
// payment that carries a referrer.
type ReferralBonus struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	ReferrerID     uint   `gorm:"index;not null"`
	ReferredUserID uint   `gorm:"index;not null"`
	PaymentID      string `gorm:"type:varchar(36);uniqueIndex;not null"`
	PackageID      string `gorm:"type:varchar(50);not null"`

	PackageAmount float64 `gorm:"type:decimal(20,8);not null"`
	BonusAmount   float64 `gorm:"type:decimal(20,8);not null"`

	Status string `gorm:"type:varchar(20);not null;default:'pending'"`
	PaidAt *time.Time
}
