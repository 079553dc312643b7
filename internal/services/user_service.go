package services

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")
var ErrOptimisticLock = errors.New("data has been modified by another writer, please retry")

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func FindUserByID(userID uint) (models.User, error) {
	// Try cache
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, userCacheKey(userID)).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	// Set cache
	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, userCacheKey(userID), data, time.Hour)
		}
	}

	return user, nil
}

// InvalidateUserCache drops the cached copy after any balance or status
// mutation so the next read is authoritative.
func InvalidateUserCache(userID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, userCacheKey(userID))
	}
}

// FindUsers retrieves a paginated list of users.
func FindUsers(page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	offset := (page - 1) * limit

	if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := database.DB.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateUser applies selective field updates with optimistic locking.
func UpdateUser(id uint, updates map[string]interface{}) (*models.User, error) {
	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	currentVersion := user.Version
	updates["version"] = currentVersion + 1

	result := tx.Model(&user).Where("version = ?", currentVersion).Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrOptimisticLock
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	InvalidateUserCache(id)

	database.DB.First(&user, id)
	return &user, nil
}

// BanUser marks the user banned and terminates any active mining session.
func BanUser(id uint, reason string) (*models.User, error) {
	user, err := UpdateUser(id, map[string]interface{}{
		"is_banned":  true,
		"ban_reason": reason,
	})
	if err != nil {
		return nil, err
	}

	if err := StopAllSessions(id, models.StopReasonBanned); err != nil {
		return user, err
	}

	return user, nil
}

// UnbanUser lifts a ban. Trial and package state are left as they were.
func UnbanUser(id uint) (*models.User, error) {
	return UpdateUser(id, map[string]interface{}{
		"is_banned":  false,
		"ban_reason": "",
	})
}
