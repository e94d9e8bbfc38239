package models

import "time"

// CreateOrderRequest represents a direct order creation request
type CreateOrderRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	AffiliateCode string `json:"affiliate_code,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	CreatorID       *string   `json:"creator_id,omitempty"`
	AffiliateLinkID *string   `json:"affiliate_link_id,omitempty"`
	Amount          int64     `json:"amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateAffiliateLinkRequest represents a request to mint an affiliate code
type CreateAffiliateLinkRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// AffiliateLinkResponse represents an affiliate link in API responses
type AffiliateLinkResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
