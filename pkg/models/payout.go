package models

import "time"

// GeneratePayoutsRequest represents an admin payout generation request.
// OrderID narrows the run to a single order; empty means the full batch.
type GeneratePayoutsRequest struct {
	OrderID string `json:"order_id,omitempty"`
}

// PayoutResponse represents a payout in API responses
type PayoutResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	CreatorID      *string   `json:"creator_id,omitempty"`
	BrandID        string    `json:"brand_id"`
	GrossAmount    int64     `json:"gross_amount"`
	CreatorAmount  int64     `json:"creator_amount"`
	PlatformAmount int64     `json:"platform_amount"`
	BrandAmount    int64     `json:"brand_amount"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
