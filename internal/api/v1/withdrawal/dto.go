package withdrawal

import (
	"cloudmine-backend/internal/models"
	"time"
)

type RequestWithdrawalInput struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	WalletAddress string  `json:"wallet_address" binding:"required"`
}

type WithdrawalResponse struct {
	ID            uint       `json:"id"`
	Amount        float64    `json:"amount"`
	WalletAddress string     `json:"wallet_address"`
	Status        string     `json:"status"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewWithdrawalResponse(w models.WithdrawalRequest) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            w.ID,
		Amount:        w.Amount,
		WalletAddress: w.WalletAddress,
		Status:        w.Status,
		AdminNotes:    w.AdminNotes,
		ProcessedAt:   w.ProcessedAt,
		CreatedAt:     w.CreatedAt,
	}
}

func NewWithdrawalResponses(withdrawals []models.WithdrawalRequest) []WithdrawalResponse {
	out := make([]WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		out = append(out, NewWithdrawalResponse(w))
	}
	return out
}
