package referral

import (
	"cloudmine-backend/internal/models"
	"cloudmine-backend/internal/services"
	"cloudmine-backend/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type BonusResponse struct {
	ID             uint       `json:"id"`
	ReferredUserID uint       `json:"referred_user_id"`
	PackageID      string     `json:"package_id"`
	PackageAmount  float64    `json:"package_amount"`
	BonusAmount    float64    `json:"bonus_amount"`
	Status         string     `json:"status"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Summary returns the user's referral code, referral counts and bonus history.
func Summary(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u := user.(models.User)

	referralCount, err := services.CountReferrals(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve referral summary"))
		return
	}

	bonusRows, err := services.FindReferralBonuses(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve referral bonuses"))
		return
	}

	bonuses := make([]BonusResponse, 0, len(bonusRows))
	for _, b := range bonusRows {
		bonuses = append(bonuses, BonusResponse{
			ID:             b.ID,
			ReferredUserID: b.ReferredUserID,
			PackageID:      b.PackageID,
			PackageAmount:  b.PackageAmount,
			BonusAmount:    b.BonusAmount,
			Status:         b.Status,
			PaidAt:         b.PaidAt,
			CreatedAt:      b.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Referral summary retrieved successfully", gin.H{
		"referral_code":     u.ReferralCode,
		"referral_count":    referralCount,
		"referral_earnings": u.ReferralEarnings,
		"bonuses":           bonuses,
	}))
}
