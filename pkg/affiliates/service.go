// Package affiliates manages the referral codes that attribute an order to a
// creator. Order ingestion resolves a code to its creator; everything else
// here is creator-facing CRUD.
package affiliates

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/creatorcart/backend/pkg/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound is returned when no affiliate link matches a code
	ErrLinkNotFound = errors.New("affiliate link not found")

	// ErrProductNotFound is returned when the product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrSelfAffiliation is returned when a creator tries to mint a link
	// for a product their own brand owns
	ErrSelfAffiliation = errors.New("cannot create an affiliate link for your own product")
)

// Service handles affiliate link operations
type Service struct {
	db *store.Client
}

// NewService creates a new affiliates service
func NewService(db *store.Client) *Service {
	return &Service{db: db}
}

// CreateLink mints a new link binding creatorID to productID under a fresh
// unique code
func (s *Service) CreateLink(ctx context.Context, creatorID, productID string) (*store.AffiliateLink, error) {
	var product store.Product
	if err := s.db.DB.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	// Self-affiliation is the self-dealing setup; refuse it at mint time
	// rather than waiting for the fraud rule to flag the orders.
	if product.BrandID == creatorID {
		return nil, ErrSelfAffiliation
	}

	code, err := generateLinkCode(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	link := store.AffiliateLink{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		ProductID: productID,
		Code:      code,
		CreatedAt: time.Now(),
	}

	if err := s.db.DB.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to create affiliate link: %w", err)
	}

	return &link, nil
}

// ResolveCode looks up the link for a referral code
func (s *Service) ResolveCode(ctx context.Context, code string) (*store.AffiliateLink, error) {
	var link store.AffiliateLink
	if err := s.db.DB.WithContext(ctx).First(&link, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to resolve affiliate code: %w", err)
	}
	return &link, nil
}

// ListByCreator returns a creator's links, newest first
func (s *Service) ListByCreator(ctx context.Context, creatorID string) ([]store.AffiliateLink, error) {
	var links []store.AffiliateLink
	err := s.db.DB.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list affiliate links: %w", err)
	}
	return links, nil
}

// generateLinkCode generates a cryptographically secure random code
func generateLinkCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}
