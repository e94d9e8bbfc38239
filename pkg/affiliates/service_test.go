package affiliates

import (
	"context"
	"testing"
	"time"

	"github.com/creatorcart/backend/pkg/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func setupTestDB(t *testing.T) *store.Client {
	client, err := store.NewClientWithDialector(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func createTestProduct(t *testing.T, db *store.Client, brandID string) store.Product {
	product := store.Product{
		ID:        uuid.NewString(),
		BrandID:   brandID,
		Name:      "Test Product",
		Price:     10000,
		Status:    store.ProductStatusActive,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.DB.Create(&product).Error)
	return product
}

func TestCreateLink(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	brandID := uuid.NewString()
	creatorID := uuid.NewString()
	product := createTestProduct(t, db, brandID)

	t.Run("Success", func(t *testing.T) {
		link, err := service.CreateLink(ctx, creatorID, product.ID)

		require.NoError(t, err)
		assert.Equal(t, creatorID, link.CreatorID)
		assert.Equal(t, product.ID, link.ProductID)
		assert.Len(t, link.Code, 8)
	})

	t.Run("Success - Codes are unique per link", func(t *testing.T) {
		link1, err := service.CreateLink(ctx, creatorID, product.ID)
		require.NoError(t, err)

		link2, err := service.CreateLink(ctx, creatorID, product.ID)
		require.NoError(t, err)

		assert.NotEqual(t, link1.Code, link2.Code)
	})

	t.Run("Error - Unknown product", func(t *testing.T) {
		_, err := service.CreateLink(ctx, creatorID, uuid.NewString())
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Error - Self-affiliation refused", func(t *testing.T) {
		_, err := service.CreateLink(ctx, brandID, product.ID)
		assert.ErrorIs(t, err, ErrSelfAffiliation)
	})
}

func TestResolveCode(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	product := createTestProduct(t, db, uuid.NewString())
	creatorID := uuid.NewString()

	created, err := service.CreateLink(ctx, creatorID, product.ID)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		link, err := service.ResolveCode(ctx, created.Code)
		require.NoError(t, err)
		assert.Equal(t, created.ID, link.ID)
		assert.Equal(t, creatorID, link.CreatorID)
	})

	t.Run("Error - Unknown code", func(t *testing.T) {
		_, err := service.ResolveCode(ctx, "no-such-code")
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})
}

func TestListByCreator(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	product := createTestProduct(t, db, uuid.NewString())
	creatorID := uuid.NewString()
	otherID := uuid.NewString()

	for i := 0; i < 3; i++ {
		_, err := service.CreateLink(ctx, creatorID, product.ID)
		require.NoError(t, err)
	}
	_, err := service.CreateLink(ctx, otherID, product.ID)
	require.NoError(t, err)

	links, err := service.ListByCreator(ctx, creatorID)
	require.NoError(t, err)
	assert.Len(t, links, 3)

	for _, link := range links {
		assert.Equal(t, creatorID, link.CreatorID)
	}
}
