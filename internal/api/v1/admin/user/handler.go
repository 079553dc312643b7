package user

import (
	"cloudmine-backend/internal/services"
	"cloudmine-backend/internal/utils"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type UserListItem struct {
	ID                 uint       `json:"id"`
	Email              string     `json:"email"`
	DisplayName        string     `json:"display_name"`
	Role               string     `json:"role"`
	Balance            float64    `json:"balance"`
	TotalTrialEarnings float64    `json:"total_trial_earnings"`
	ActivePackage      string     `json:"active_package,omitempty"`
	PackageExpiresAt   *time.Time `json:"package_expires_at,omitempty"`
	IsBanned           bool       `json:"is_banned"`
	BanReason          string     `json:"ban_reason,omitempty"`
	ReferralCode       string     `json:"referral_code"`
	ReferralEarnings   float64    `json:"referral_earnings"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ListUsers returns a paginated list of users. Admin only.
func ListUsers(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "20")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	users, total, err := services.FindUsers(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	var userItems []UserListItem
	for _, u := range users {
		userItems = append(userItems, UserListItem{
			ID:                 u.ID,
			Email:              u.Email,
			DisplayName:        u.DisplayName,
			Role:               u.Role,
			Balance:            u.Balance,
			TotalTrialEarnings: u.TotalTrialEarnings,
			ActivePackage:      u.ActivePackage,
			PackageExpiresAt:   u.PackageExpiresAt,
			IsBanned:           u.IsBanned,
			BanReason:          u.BanReason,
			ReferralCode:       u.ReferralCode,
			ReferralEarnings:   u.ReferralEarnings,
			CreatedAt:          u.CreatedAt,
			UpdatedAt:          u.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", UserListResponse{
		Users: userItems,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

type BanUserRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BanUser bans a user and stops any active mining session they have.
func BanUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	var req BanUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	u, err := services.BanUser(uint(id), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		case errors.Is(err, services.ErrOptimisticLock):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to ban user"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User banned successfully", gin.H{
		"id":         u.ID,
		"is_banned":  u.IsBanned,
		"ban_reason": u.BanReason,
	}))
}

// UnbanUser lifts a ban.
func UnbanUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	u, err := services.UnbanUser(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		case errors.Is(err, services.ErrOptimisticLock):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to unban user"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User unbanned successfully", gin.H{
		"id":        u.ID,
		"is_banned": u.IsBanned,
	}))
}
