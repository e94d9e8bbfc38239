package store

import "time"

// User roles
const (
	RoleCreator = "creator"
	RoleBrand   = "brand"
	RoleAdmin   = "admin"
)

// Order statuses
const (
	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Product statuses
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Payout statuses
const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

// Fraud flag severities
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Tournament statuses
const (
	TournamentStatusScheduled = "scheduled"
	TournamentStatusLive      = "live"
	TournamentStatusFinished  = "finished"
)

// User is a platform account: a creator, a brand, or an admin
type User struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	Name      string    `gorm:"column:name"`
	Role      string    `gorm:"column:role"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (User) TableName() string { return "users" }

// Product is a sale unit owned by a brand. Rates are fractions of the gross;
// nil means "use the platform default" (0.25 creator / 0.15 platform).
type Product struct {
	ID               string    `gorm:"primaryKey;column:id"`
	BrandID          string    `gorm:"column:brand_id;index"`
	Name             string    `gorm:"column:name"`
	Price            int64     `gorm:"column:price"`
	CreatorShareRate *float64  `gorm:"column:creator_share_rate"`
	PlatformTakeRate *float64  `gorm:"column:platform_take_rate"`
	Status           string    `gorm:"column:status"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (Product) TableName() string { return "products" }

// Order is one purchase event. Amount is in the smallest currency unit.
// CheckoutSessionID carries the payment processor's session identifier and is
// unique at the store level: the idempotency backstop for webhook redelivery.
type Order struct {
	ID                string    `gorm:"primaryKey;column:id"`
	ProductID         string    `gorm:"column:product_id;index"`
	CreatorID         *string   `gorm:"column:creator_id;index"`
	AffiliateLinkID   *string   `gorm:"column:affiliate_link_id"`
	Amount            int64     `gorm:"column:amount"`
	Status            string    `gorm:"column:status;index"`
	CheckoutSessionID *string   `gorm:"column:checkout_session_id;uniqueIndex"`
	Origin            string    `gorm:"column:origin"`
	CreatedAt         time.Time `gorm:"column:created_at;index"`
}

func (Order) TableName() string { return "orders" }

// Payout is the settlement record for one order. OrderID is unique: at most
// one payout per order, and the three amounts sum to GrossAmount exactly.
type Payout struct {
	ID             string    `gorm:"primaryKey;column:id"`
	OrderID        string    `gorm:"column:order_id;uniqueIndex"`
	CreatorID      *string   `gorm:"column:creator_id;index"`
	BrandID        string    `gorm:"column:brand_id;index"`
	GrossAmount    int64     `gorm:"column:gross_amount"`
	CreatorAmount  int64     `gorm:"column:creator_amount"`
	PlatformAmount int64     `gorm:"column:platform_amount"`
	BrandAmount    int64     `gorm:"column:brand_amount"`
	Status         string    `gorm:"column:status"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (Payout) TableName() string { return "payouts" }

// FraudFlag is an advisory record raised by a fraud rule. It never blocks
// settlement; Reviewed and Note are set later by a human reviewer.
type FraudFlag struct {
	ID        string    `gorm:"primaryKey;column:id"`
	OrderID   string    `gorm:"column:order_id;index"`
	CreatorID *string   `gorm:"column:creator_id"`
	BrandID   *string   `gorm:"column:brand_id"`
	Reason    string    `gorm:"column:reason"`
	Severity  string    `gorm:"column:severity"`
	Reviewed  bool      `gorm:"column:reviewed"`
	Note      string    `gorm:"column:note"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (FraudFlag) TableName() string { return "fraud_flags" }

// AffiliateLink binds a creator to a product with a unique referral code
type AffiliateLink struct {
	ID        string    `gorm:"primaryKey;column:id"`
	CreatorID string    `gorm:"column:creator_id;index"`
	ProductID string    `gorm:"column:product_id;index"`
	Code      string    `gorm:"column:code;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AffiliateLink) TableName() string { return "affiliate_links" }

// Tournament is a time-boxed sales competition, optionally scoped to a
// single product
type Tournament struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Slug      string    `gorm:"column:slug;uniqueIndex"`
	Name      string    `gorm:"column:name"`
	StartAt   time.Time `gorm:"column:start_at"`
	EndAt     time.Time `gorm:"column:end_at"`
	Status    string    `gorm:"column:status;index"`
	ProductID *string   `gorm:"column:product_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Tournament) TableName() string { return "tournaments" }
