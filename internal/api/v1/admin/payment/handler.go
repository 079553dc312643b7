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

func operator(c *gin.Context) (uint, string) {
	if userVal, exists := c.Get("user"); exists {
		if u, ok := userVal.(models.User); ok {
			return u.ID, u.Email
		}
	}
	return 0, "unknown"
}

// ListPayments returns payment notifications across all users. Admin only.
func ListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid pagination parameters"))
		return
	}

	filter := services.PaymentFilter{Page: page, Limit: limit}

	if status, exists := c.GetQuery("status"); exists {
		filter.Status = &status
	}
	if userIDStr, exists := c.GetQuery("user_id"); exists {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user_id"))
			return
		}
		uid := uint(userID)
		filter.UserID = &uid
	}

	payments, total, err := services.FindPayments(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch payments"))
		return
	}

	var items []PaymentListItem
	for _, p := range payments {
		items = append(items, NewPaymentListItem(p))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payments retrieved successfully", PaymentListResponse{
		Payments: items,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}))
}

// ApprovePayment activates the purchased package and pays the referral
// bonus, all in one transaction.
func ApprovePayment(c *gin.Context) {
	paymentID := c.Param("id")

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	operatorID, operatorName := operator(c)
	if err := services.ApprovePayment(paymentID, operatorID, operatorName, input.Notes); err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrPaymentAlreadyProcessed):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, services.ErrOptimisticLock):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to approve payment"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment approved", nil))
}

// RejectPayment marks a pending payment notification rejected.
func RejectPayment(c *gin.Context) {
	paymentID := c.Param("id")

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	operatorID, _ := operator(c)
	if err := services.RejectPayment(paymentID, operatorID, input.Notes); err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrPaymentAlreadyProcessed):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to reject payment"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment rejected", nil))
}
