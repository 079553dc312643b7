package user

import (
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/models"
	"cloudmine-backend/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the authenticated user's profile and balances.
func CurrentUser(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	u := user.(models.User)

	// Force reload user from DB to ensure we have the latest balance,
	// ignoring the cached version from middleware
	var latestUser models.User
	if err := database.DB.First(&latestUser, u.ID).Error; err == nil {
		u = latestUser
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	resp := NewUserResponse(&u)
	resp.Token = token

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", resp))
}
