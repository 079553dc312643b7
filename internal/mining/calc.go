package mining

import (
	"math"
	"time"

	"cloudmine-backend/internal/models"
)

const (
	// TrialEarningsCap bounds cumulative trial earnings in USD.
	TrialEarningsCap = 25.0
	// TrialDays is the length of the free trial window.
	TrialDays = 90

	// MaxSessionHours bounds the elapsed time any single accrual may cover.
	MaxSessionHours = 24.0
	// MaxEarningMultiplier caps the earning multiplier for paid packages.
	MaxEarningMultiplier = 10.0
	// SanityMultiplier bounds output at SanityMultiplier x base hourly rate,
	// independent of the multiplier cap.
	SanityMultiplier = 10.0

	// DefaultHashRate is used when a coin's base rate is corrupted.
	DefaultHashRate = 1000.0
)

// Accrue computes total earnings for elapsedHours of mining at hashRate
// against a coin whose reference rate is baseEarning per hour at baseHashRate.
// Invalid inputs yield 0; elapsed time is clamped to MaxSessionHours and the
// result is clamped to the sanity ceiling so a tampered hash rate stays
// bounded.
func Accrue(baseEarning, hashRate, baseHashRate, elapsedHours float64, packageID string) float64 {
	if baseEarning < 0 || hashRate < 0 || baseHashRate <= 0 || elapsedHours < 0 {
		return 0
	}

	if elapsedHours > MaxSessionHours {
		elapsedHours = MaxSessionHours
	}

	multipliers := PackageMultipliers(packageID)
	hashRateRatio := hashRate / baseHashRate

	// Trial users never exceed the base rate via multiplier manipulation.
	capMultiplier := 1.0
	if packageID != "" {
		capMultiplier = MaxEarningMultiplier
	}
	effectiveMultiplier := math.Min(multipliers.Earning, capMultiplier)

	hourlyEarning := baseEarning * hashRateRatio * effectiveMultiplier
	result := hourlyEarning * elapsedHours

	maxReasonable := baseEarning * SanityMultiplier * elapsedHours
	if result > maxReasonable {
		return maxReasonable
	}

	return math.Max(0, result)
}

// EffectiveHashRate computes the hash rate a session runs at. The result
// never drops below the coin's base rate, whatever the multiplier table says.
func EffectiveHashRate(baseHashRate float64, packageID string) float64 {
	if baseHashRate <= 0 {
		return DefaultHashRate
	}

	if packageID == "" {
		return baseHashRate
	}

	multipliers := PackageMultipliers(packageID)
	boosted := math.Floor(baseHashRate * multipliers.HashRate)

	return math.Max(baseHashRate, boosted)
}

// CanMine decides whether a user may start or continue mining at the given
// time. A paid package alone grants eligibility; package expiry is a session
// termination concern, not an eligibility one.
func CanMine(u *models.User, now time.Time) bool {
	if u == nil {
		return false
	}
	if u.IsBanned {
		return false
	}
	if u.ActivePackage != "" {
		return true
	}

	if u.TrialEndDate == nil {
		return false
	}

	return now.Before(*u.TrialEndDate) && u.TotalTrialEarnings < TrialEarningsCap
}
