package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/models"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(
		&models.User{},
		&models.MiningSession{},
		&models.PaymentNotification{},
		&models.WithdrawalRequest{},
		&models.ReferralBonus{},
		&models.Transaction{},
	)
	db.AutoMigrate(
		&models.User{},
		&models.MiningSession{},
		&models.PaymentNotification{},
		&models.WithdrawalRequest{},
		&models.ReferralBonus{},
		&models.Transaction{},
	)

	database.DB = db

	// Fresh tracking state per test; the global manager outlives test runs.
	ReconcileMgr = NewReconcileManager()

	os.Setenv("JWT_SECRET", "test_secret")
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

// createTrialUser seeds a user inside an active 90-day trial window.
func createTrialUser(email string) models.User {
	now := time.Now()
	trialEnd := now.AddDate(0, 0, 90)

	user := models.User{
		Email:          email,
		Password:       "hashed",
		DisplayName:    "Test User",
		Role:           "user",
		TrialStartDate: &now,
		TrialEndDate:   &trialEnd,
		Version:        1,
	}
	database.DB.Create(&user)
	return user
}

// createPackageUser seeds a user with an active paid package.
func createPackageUser(email, packageID string, expiresAt time.Time) models.User {
	now := time.Now()
	trialEnd := now.AddDate(0, 0, 90)

	user := models.User{
		Email:            email,
		Password:         "hashed",
		DisplayName:      "Package User",
		Role:             "user",
		TrialStartDate:   &now,
		TrialEndDate:     &trialEnd,
		ActivePackage:    packageID,
		PackageExpiresAt: &expiresAt,
		Version:          1,
	}
	database.DB.Create(&user)
	return user
}

// createActiveSession seeds an active session that started at the given time.
func createActiveSession(userID uint, coin string, start time.Time, hashRate float64) models.MiningSession {
	session := models.MiningSession{
		ID:          uuid.New().String(),
		UserID:      userID,
		Coin:        coin,
		StartTime:   start,
		HashRate:    hashRate,
		IsActive:    true,
		LastUpdated: start,
	}
	database.DB.Create(&session)
	return session
}
