package payment

import (
	"cloudmine-backend/internal/models"
	"time"

	"gorm.io/datatypes"
)

type SubmitPaymentInput struct {
	PackageID string         `json:"package_id" binding:"required"`
	Amount    float64        `json:"amount" binding:"required,gt=0"`
	TxHash    string         `json:"tx_hash" binding:"required"`
	Details   datatypes.JSON `json:"details"`
}

type PaymentResponse struct {
	ID         string         `json:"id"`
	PackageID  string         `json:"package_id"`
	Amount     float64        `json:"amount"`
	TxHash     string         `json:"tx_hash"`
	Status     string         `json:"status"`
	AdminNotes string         `json:"admin_notes,omitempty"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewPaymentResponse(p models.PaymentNotification) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		PackageID:  p.PackageID,
		Amount:     p.Amount,
		TxHash:     p.TxHash,
		Status:     p.Status,
		AdminNotes: p.AdminNotes,
		ApprovedAt: p.ApprovedAt,
		Details:    p.Details,
		CreatedAt:  p.CreatedAt,
	}
}

func NewPaymentResponses(payments []models.PaymentNotification) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, NewPaymentResponse(p))
	}
	return out
}
