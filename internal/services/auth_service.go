package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"cloudmine-backend/internal/utils"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBanned      = errors.New("this account has been banned")
)

// RegisterUser creates a user with a fresh 90-day trial window and a derived
// referral code. referralCode, when present, is resolved to the referring
// user; an unknown code is ignored rather than rejected.
func RegisterUser(email, password, displayName, referralCode string) (*models.User, error) {
	var existingUser models.User
	result := database.DB.Where("email = ?", email).First(&existingUser)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var userCount int64
	database.DB.Model(&models.User{}).Count(&userCount)

	role := "user"
	if userCount == 0 {
		role = "admin"
	}

	var referredBy uint
	if referralCode != "" {
		var referrer models.User
		if err := database.DB.Where("referral_code = ?", referralCode).First(&referrer).Error; err == nil {
			referredBy = referrer.ID
		}
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, mining.TrialDays)

	user := &models.User{
		Email:          email,
		Password:       string(hashedPassword),
		DisplayName:    displayName,
		Role:           role,
		TrialStartDate: &now,
		TrialEndDate:   &trialEnd,
		ReferredBy:     referredBy,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		// The code derives from the id, which exists only after insert.
		user.ReferralCode = utils.ReferralCode(user.ID)
		return tx.Model(user).Update("referral_code", user.ReferralCode).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func LoginUser(email, password string) (string, *models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if user.IsBanned {
		return "", nil, ErrAccountBanned
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}
