package user

import (
	"cloudmine-backend/internal/models"
	"time"
)

// UserResponse defines the response structure for account information.
type UserResponse struct {
	ID                 uint       `json:"id"`
	Email              string     `json:"email"`
	DisplayName        string     `json:"display_name"`
	Role               string     `json:"role"`
	Balance            float64    `json:"balance"`
	OnTrial            bool       `json:"on_trial"`
	TotalTrialEarnings float64    `json:"total_trial_earnings"`
	TrialStartDate     *time.Time `json:"trial_start_date,omitempty"`
	TrialEndDate       *time.Time `json:"trial_end_date,omitempty"`
	ActivePackage      string     `json:"active_package,omitempty"`
	PackageExpiresAt   *time.Time `json:"package_expires_at,omitempty"`
	ReferralCode       string     `json:"referral_code"`
	ReferralEarnings   float64    `json:"referral_earnings"`
	Token              string     `json:"token,omitempty"`
}

// NewUserResponse maps a user record to its API shape.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		Role:               u.Role,
		Balance:            u.Balance,
		OnTrial:            u.OnTrial(),
		TotalTrialEarnings: u.TotalTrialEarnings,
		TrialStartDate:     u.TrialStartDate,
		TrialEndDate:       u.TrialEndDate,
		ActivePackage:      u.ActivePackage,
		PackageExpiresAt:   u.PackageExpiresAt,
		ReferralCode:       u.ReferralCode,
		ReferralEarnings:   u.ReferralEarnings,
	}
}
