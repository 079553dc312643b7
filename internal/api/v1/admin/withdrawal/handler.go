package withdrawal

import (
	"cloudmine-backend/internal/models"
	"cloudmine-backend/internal/services"
	"cloudmine-backend/internal/utils"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ReviewInput struct {
	Notes string `json:"notes"`
}

type WithdrawalListItem struct {
	ID            uint       `json:"id"`
	UserID        uint       `json:"user_id"`
	Amount        float64    `json:"amount"`
	WalletAddress string     `json:"wallet_address"`
	Status        string     `json:"status"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	ProcessedBy   uint       `json:"processed_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type WithdrawalListResponse struct {
	Withdrawals []WithdrawalListItem `json:"withdrawals"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

func operator(c *gin.Context) (uint, string) {
	if userVal, exists := c.Get("user"); exists {
		if u, ok := userVal.(models.User); ok {
			return u.ID, u.Email
		}
	}
	return 0, "unknown"
}

// ListWithdrawals returns withdrawal requests across all users. Admin only.
func ListWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid pagination parameters"))
		return
	}

	filter := services.WithdrawalFilter{Page: page, Limit: limit}

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

	withdrawals, total, err := services.FindWithdrawals(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch withdrawals"))
		return
	}

	var items []WithdrawalListItem
	for _, w := range withdrawals {
		items = append(items, WithdrawalListItem{
			ID:            w.ID,
			UserID:        w.UserID,
			Amount:        w.Amount,
			WalletAddress: w.WalletAddress,
			Status:        w.Status,
			AdminNotes:    w.AdminNotes,
			ProcessedAt:   w.ProcessedAt,
			ProcessedBy:   w.ProcessedBy,
			CreatedAt:     w.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Withdrawals retrieved successfully", WithdrawalListResponse{
		Withdrawals: items,
		Total:       total,
		Page:        page,
		Limit:       limit,
	}))
}

// ApproveWithdrawal deducts the user's balance and records a ledger entry.
func ApproveWithdrawal(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid withdrawal ID"))
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	operatorID, operatorName := operator(c)
	if err := services.ApproveWithdrawal(uint(id), operatorID, operatorName, input.Notes); err != nil {
		switch {
		case errors.Is(err, services.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrWithdrawalAlreadyProcessed),
			errors.Is(err, services.ErrOptimisticLock):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, services.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to approve withdrawal"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Withdrawal approved", nil))
}

// RejectWithdrawal marks a pending withdrawal rejected without touching
// the balance.
func RejectWithdrawal(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid withdrawal ID"))
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	operatorID, _ := operator(c)
	if err := services.RejectWithdrawal(uint(id), operatorID, input.Notes); err != nil {
		switch {
		case errors.Is(err, services.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrWithdrawalAlreadyProcessed):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to reject withdrawal"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Withdrawal rejected", nil))
}
