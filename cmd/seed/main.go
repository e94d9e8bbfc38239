// Seeds a development database with brands, creators, products, affiliate
// links, a live tournament, and a spread of completed orders. Not for
// production use.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/creatorcart/backend/config"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/google/uuid"
)

const (
	brandCount   = 5
	creatorCount = 12
	orderCount   = 200
)

func main() {
	cfg := config.Load()

	db, err := store.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	gofakeit.Seed(42)
	rng := rand.New(rand.NewSource(42))

	log.Println("🌱 Seeding database...")

	// Admin
	admin := store.User{
		ID:        uuid.NewString(),
		Email:     "admin@creatorcart.dev",
		Name:      "Platform Admin",
		Role:      store.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&admin).Error; err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}

	// Brands and their products
	var products []store.Product
	for i := 0; i < brandCount; i++ {
		brand := store.User{
			ID:        uuid.NewString(),
			Email:     gofakeit.Email(),
			Name:      gofakeit.Company(),
			Role:      store.RoleBrand,
			CreatedAt: time.Now(),
		}
		if err := db.DB.Create(&brand).Error; err != nil {
			log.Fatalf("❌ Failed to create brand: %v", err)
		}

		for j := 0; j < 2+rng.Intn(3); j++ {
			product := store.Product{
				ID:        uuid.NewString(),
				BrandID:   brand.ID,
				Name:      gofakeit.ProductName(),
				Price:     int64(500 + rng.Intn(20000)),
				Status:    store.ProductStatusActive,
				CreatedAt: time.Now(),
			}
			// Some products carry custom rates, most lean on defaults
			if rng.Float64() < 0.3 {
				creatorRate := 0.1 + rng.Float64()*0.3
				platformRate := 0.1 + rng.Float64()*0.1
				product.CreatorShareRate = &creatorRate
				product.PlatformTakeRate = &platformRate
			}
			if err := db.DB.Create(&product).Error; err != nil {
				log.Fatalf("❌ Failed to create product: %v", err)
			}
			products = append(products, product)
		}
	}
	log.Printf("✅ Created %d brands, %d products", brandCount, len(products))

	// Creators with affiliate links
	var creators []store.User
	var links []store.AffiliateLink
	for i := 0; i < creatorCount; i++ {
		creator := store.User{
			ID:        uuid.NewString(),
			Email:     gofakeit.Email(),
			Name:      gofakeit.Name(),
			Role:      store.RoleCreator,
			CreatedAt: time.Now(),
		}
		if err := db.DB.Create(&creator).Error; err != nil {
			log.Fatalf("❌ Failed to create creator: %v", err)
		}
		creators = append(creators, creator)

		for j := 0; j < 1+rng.Intn(3); j++ {
			product := products[rng.Intn(len(products))]
			link := store.AffiliateLink{
				ID:        uuid.NewString(),
				CreatorID: creator.ID,
				ProductID: product.ID,
				Code:      fmt.Sprintf("%s%04d", strings.ToLower(gofakeit.LetterN(4)), rng.Intn(10000)),
				CreatedAt: time.Now(),
			}
			if err := db.DB.Create(&link).Error; err != nil {
				log.Fatalf("❌ Failed to create affiliate link: %v", err)
			}
			links = append(links, link)
		}
	}
	log.Printf("✅ Created %d creators, %d affiliate links", creatorCount, len(links))

	// A live tournament spanning the past and next week
	tournament := store.Tournament{
		ID:        uuid.NewString(),
		Slug:      "summer-showdown",
		Name:      "Summer Showdown",
		StartAt:   time.Now().AddDate(0, 0, -7),
		EndAt:     time.Now().AddDate(0, 0, 7),
		Status:    store.TournamentStatusLive,
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&tournament).Error; err != nil {
		log.Fatalf("❌ Failed to create tournament: %v", err)
	}
	log.Printf("✅ Created tournament %q", tournament.Slug)

	// Completed orders spread over the tournament window, most attributed
	// through an affiliate link
	origins := []string{"web", "mobile", "api"}
	for i := 0; i < orderCount; i++ {
		createdAt := time.Now().Add(-time.Duration(rng.Intn(7*24)) * time.Hour)

		order := store.Order{
			ID:        uuid.NewString(),
			Amount:    0,
			Status:    store.OrderStatusCompleted,
			Origin:    origins[rng.Intn(len(origins))],
			CreatedAt: createdAt,
		}

		if rng.Float64() < 0.8 {
			link := links[rng.Intn(len(links))]
			order.ProductID = link.ProductID
			order.CreatorID = &link.CreatorID
			order.AffiliateLinkID = &link.ID
		} else {
			order.ProductID = products[rng.Intn(len(products))].ID
		}

		for p := range products {
			if products[p].ID == order.ProductID {
				order.Amount = products[p].Price
				break
			}
		}

		if rng.Float64() < 0.5 {
			sessionID := fmt.Sprintf("cs_seed_%s", uuid.NewString()[:8])
			order.CheckoutSessionID = &sessionID
		}

		if err := db.DB.Create(&order).Error; err != nil {
			log.Fatalf("❌ Failed to create order: %v", err)
		}
	}
	log.Printf("✅ Created %d orders", orderCount)

	log.Println("🌱 Seed complete")
}
