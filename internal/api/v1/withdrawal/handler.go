package withdrawal

import (
	"cloudmine-backend/internal/models"
	"cloudmine-backend/internal/services"
	"cloudmine-backend/internal/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) (models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	return user.(models.User), true
}

// RequestWithdrawal submits a withdrawal for admin review. The balance is
// only deducted when an admin approves.
func RequestWithdrawal(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var input RequestWithdrawalInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	request, err := services.RequestWithdrawal(u.ID, input.Amount, input.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWithdrawalBelowMinimum),
			errors.Is(err, services.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to submit withdrawal request"))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Withdrawal request submitted, pending review", NewWithdrawalResponse(*request)))
}

// ListWithdrawals returns the user's own withdrawal requests.
func ListWithdrawals(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	withdrawals, total, err := services.FindWithdrawals(services.WithdrawalFilter{
		UserID: &u.ID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve withdrawals"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Withdrawals retrieved successfully", gin.H{
		"withdrawals": NewWithdrawalResponses(withdrawals),
		"total":       total,
		"page":        page,
		"limit":       limit,
	}))
}
