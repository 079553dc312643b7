package mining

import (
	"cloudmine-backend/internal/models"
	"time"
)

type StartMiningInput struct {
	CoinID string `json:"coin_id" binding:"required"`
}

type StopMiningInput struct {
	SessionID string `json:"session_id" binding:"required"`
}

// CoinResponse is a catalog coin annotated with the rates the requesting
// user would actually mine at.
type CoinResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	BaseHashRate      float64 `json:"base_hash_rate"`
	BaseEarning       float64 `json:"base_earning"`
	EffectiveHashRate float64 `json:"effective_hash_rate"`
	EarningMultiplier float64 `json:"earning_multiplier"`
}

type SessionResponse struct {
	ID          string     `json:"id"`
	Coin        string     `json:"coin"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	HashRate    float64    `json:"hash_rate"`
	TotalEarned float64    `json:"total_earned"`
	IsActive    bool       `json:"is_active"`
	PackageID   string     `json:"package_id,omitempty"`
	StopReason  string     `json:"stop_reason,omitempty"`
	LastUpdated time.Time  `json:"last_updated"`
}

func NewSessionResponse(s models.MiningSession) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		Coin:        s.Coin,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		HashRate:    s.HashRate,
		TotalEarned: s.TotalEarned,
		IsActive:    s.IsActive,
		PackageID:   s.PackageID,
		StopReason:  s.StopReason,
		LastUpdated: s.LastUpdated,
	}
}

func NewSessionResponses(sessions []models.MiningSession) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, NewSessionResponse(s))
	}
	return out
}
