package payment

import (
	"cloudmine-backend/internal/models"
	"time"

	"gorm.io/datatypes"
)

type ReviewInput struct {
	Notes string `json:"notes"`
}

type PaymentListItem struct {
	ID         string         `json:"id"`
	UserID     uint           `json:"user_id"`
	PackageID  string         `json:"package_id"`
	Amount     float64        `json:"amount"`
	TxHash     string         `json:"tx_hash"`
	Status     string         `json:"status"`
	AdminNotes string         `json:"admin_notes,omitempty"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy uint           `json:"approved_by,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type PaymentListResponse struct {
	Payments []PaymentListItem `json:"payments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func NewPaymentListItem(p models.PaymentNotification) PaymentListItem {
	return PaymentListItem{
		ID:         p.ID,
		UserID:     p.UserID,
		PackageID:  p.PackageID,
		Amount:     p.Amount,
		TxHash:     p.TxHash,
		Status:     p.Status,
		AdminNotes: p.AdminNotes,
		ApprovedAt: p.ApprovedAt,
		ApprovedBy: p.ApprovedBy,
		Details:    p.Details,
		CreatedAt:  p.CreatedAt,
	}
}
