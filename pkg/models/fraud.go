package models

import "time"

// EvaluateFraudRequest represents a fraud evaluation trigger
type EvaluateFraudRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// ReviewFraudFlagRequest represents a human reviewer's verdict
type ReviewFraudFlagRequest struct {
	Reviewed bool   `json:"reviewed"`
	Note     string `json:"note,omitempty" validate:"max=2000"`
}

// FraudFlagResponse represents a fraud flag in API responses
type FraudFlagResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	CreatorID *string   `json:"creator_id,omitempty"`
	BrandID   *string   `json:"brand_id,omitempty"`
	Reason    string    `json:"reason"`
	Severity  string    `json:"severity"`
	Reviewed  bool      `json:"reviewed"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
