package payment

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

// SubmitPayment records a payment notification for admin review.
func SubmitPayment(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var input SubmitPaymentInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	notification, err := services.SubmitPaymentNotification(u.ID, input.PackageID, input.Amount, input.TxHash, input.Details)
	if err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to submit payment notification"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Payment notification submitted, pending review", NewPaymentResponse(*notification)))
}

// ListPayments returns the user's own payment notifications.
func ListPayments(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	payments, total, err := services.FindPayments(services.PaymentFilter{
		UserID: &u.ID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve payments"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payments retrieved successfully", gin.H{
		"payments": NewPaymentResponses(payments),
		"total":    total,
		"page":     page,
		"limit":    limit,
	}))
}
