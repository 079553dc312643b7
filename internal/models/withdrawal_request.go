package models

import "time"

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

type WithdrawalRequest struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID        uint    `gorm:"index;not null"`
	Amount        float64 `gorm:"type:decimal(20,8);not null"`
	WalletAddress string  `gorm:"type:varchar(128);not null"`

	Status      string `gorm:"type:varchar(20);index;not null;default:'pending'"`
	AdminNotes  string `gorm:"type:text"`
	ProcessedAt *time.Time
	ProcessedBy uint `gorm:"default:0"`
}
