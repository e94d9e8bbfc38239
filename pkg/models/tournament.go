package models

import "time"

// TournamentResponse represents a tournament in API responses
type TournamentResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Status    string    `json:"status"`
	ProductID *string   `json:"product_id,omitempty"`
}

// RankingEntry represents one leaderboard row in API responses
type RankingEntry struct {
	Rank        int    `json:"rank"`
	CreatorID   string `json:"creator_id"`
	OrderCount  int    `json:"order_count"`
	TotalAmount int64  `json:"total_amount"`
}

// RankingResponse represents a tournament leaderboard plus the caller's own
// standing. MyRank is null when the caller is unauthenticated or unranked.
type RankingResponse struct {
	Tournament TournamentResponse `json:"tournament"`
	Rankings   []RankingEntry     `json:"rankings"`
	MyRank     *RankingEntry      `json:"my_rank"`
}
