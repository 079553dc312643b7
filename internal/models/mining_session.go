package models

import "time"

// Stop reasons recorded when a session is terminated automatically.
// A manual stop leaves StopReason empty.
const (
	StopReasonMultipleSessions = "Multiple active sessions detected"
	StopReasonStartMismatch    = "Session start mismatch"
	StopReasonPackageExpired   = "Package expired"
	StopReasonMaxDuration      = "Maximum session duration exceeded"
	StopReasonNegativeTime     = "Negative elapsed time"
	StopReasonUnrealistic      = "Unrealistic earnings detected"
	StopReasonTrialLimit       = "Trial limit reached"
	StopReasonTrialExpired     = "Trial period expired"
	StopReasonBanned           = "Account banned"
)

type MiningSession struct {
	ID        string `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID    uint      `gorm:"index;not null"`
	Coin      string    `gorm:"type:varchar(10);not null"`
	StartTime time.Time `gorm:"not null"`
	EndTime   *time.Time

	HashRate    float64 `gorm:"not null"`
	TotalEarned float64 `gorm:"type:decimal(20,8);not null;default:0"`

	// Invariant: at most one session per user has IsActive=true.
	IsActive bool `gorm:"index;not null;default:false"`

	PackageID   string `gorm:"type:varchar(50);default:''"`
	StopReason  string `gorm:"type:varchar(100)"`
	LastUpdated time.Time
}
