package models

import "time"

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"not null;default:'user'"`

	DisplayName string `gorm:"type:varchar(100)"`

	// Balance is credited by the reconcile loop and referral bonuses and
	// debited only by withdrawal approval.
	Balance            float64 `gorm:"type:decimal(20,8);not null;default:0"`
	TotalTrialEarnings float64 `gorm:"type:decimal(20,8);not null;default:0"`

	TrialStartDate *time.Time
	TrialEndDate   *time.Time

	ActivePackage    string `gorm:"type:varchar(50);default:''"`
	PackageExpiresAt *time.Time

	IsBanned  bool   `gorm:"not null;default:false"`
	BanReason string `gorm:"type:text"`

	ReferralCode     string  `gorm:"type:varchar(16);index"`
	ReferredBy       uint    `gorm:"index;default:0"` // 0 means no referrer
	ReferralEarnings float64 `gorm:"type:decimal(20,8);not null;default:0"`

	Version int `gorm:"default:1"`
}

// OnTrial reports whether the user earns against the trial allowance.
func (u *User) OnTrial() bool {
	return u.ActivePackage == ""
}
