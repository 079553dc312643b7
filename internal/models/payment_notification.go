package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// PaymentNotification is a user-submitted claim that an off-chain payment for
// a package was made. An admin verifies it manually and approves or rejects.
type PaymentNotification struct {
	ID        string `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID    uint    `gorm:"index;not null"`
	PackageID string  `gorm:"type:varchar(50);not null"`
	Amount    float64 `gorm:"type:decimal(20,8);not null"`
	TxHash    string  `gorm:"type:varchar(128)"`

	Status     string `gorm:"type:varchar(20);index;not null;default:'pending'"`
	AdminNotes string `gorm:"type:text"`
	ApprovedAt *time.Time
	ApprovedBy uint `gorm:"default:0"`

	// Free-form client metadata (wallet used, network, screenshots refs).
	Details datatypes.JSON
}
