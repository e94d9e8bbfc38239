package orders

import (
	"context"
	"testing"
	"time"

	"github.com/creatorcart/backend/pkg/affiliates"
	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type recordingEnqueuer struct {
	orderIDs []string
}

func (r *recordingEnqueuer) Enqueue(orderID string) bool {
	r.orderIDs = append(r.orderIDs, orderID)
	return true
}

func setupTestDB(t *testing.T) *store.Client {
	client, err := store.NewClientWithDialector(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestService(t *testing.T, db *store.Client) (*Service, *recordingEnqueuer) {
	enqueuer := &recordingEnqueuer{}
	service := NewService(db, affiliates.NewService(db), enqueuer, logger.New("error", "text"), nil)
	return service, enqueuer
}

func createTestProduct(t *testing.T, db *store.Client, status string) store.Product {
	product := store.Product{
		ID:        uuid.NewString(),
		BrandID:   uuid.NewString(),
		Name:      "Test Product",
		Price:     10000,
		Status:    status,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.DB.Create(&product).Error)
	return product
}

func createTestLink(t *testing.T, db *store.Client, productID string) store.AffiliateLink {
	link := store.AffiliateLink{
		ID:        uuid.NewString(),
		CreatorID: uuid.NewString(),
		ProductID: productID,
		Code:      uuid.NewString()[:8],
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.DB.Create(&link).Error)
	return link
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	service, enqueuer := newTestService(t, db)
	ctx := context.Background()

	product := createTestProduct(t, db, store.ProductStatusActive)
	link := createTestLink(t, db, product.ID)

	t.Run("Success - Unattributed order", func(t *testing.T) {
		order, err := service.Create(ctx, "actor-1", CreateInput{
			ProductID: product.ID,
			Amount:    10000,
			Origin:    "203.0.113.9",
		})

		require.NoError(t, err)
		assert.Equal(t, store.OrderStatusCompleted, order.Status)
		assert.Nil(t, order.CreatorID)
		assert.Contains(t, enqueuer.orderIDs, order.ID)
	})

	t.Run("Success - Affiliate attribution", func(t *testing.T) {
		order, err := service.Create(ctx, "actor-1", CreateInput{
			ProductID:     product.ID,
			Amount:        10000,
			AffiliateCode: link.Code,
		})

		require.NoError(t, err)
		require.NotNil(t, order.CreatorID)
		assert.Equal(t, link.CreatorID, *order.CreatorID)
		require.NotNil(t, order.AffiliateLinkID)
		assert.Equal(t, link.ID, *order.AffiliateLinkID)
	})

	t.Run("Error - Non-positive amount", func(t *testing.T) {
		_, err := service.Create(ctx, "actor-1", CreateInput{
			ProductID: product.ID,
			Amount:    0,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = service.Create(ctx, "actor-1", CreateInput{
			ProductID: product.ID,
			Amount:    -100,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Error - Unknown product", func(t *testing.T) {
		_, err := service.Create(ctx, "actor-1", CreateInput{
			ProductID: uuid.NewString(),
			Amount:    10000,
		})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Error - Inactive product", func(t *testing.T) {
		inactive := createTestProduct(t, db, store.ProductStatusInactive)

		_, err := service.Create(ctx, "actor-1", CreateInput{
			ProductID: inactive.ID,
			Amount:    10000,
		})
		assert.ErrorIs(t, err, ErrProductInactive)
	})

	t.Run("Error - Unknown affiliate code rejects direct creation", func(t *testing.T) {
		_, err := service.Create(ctx, "actor-1", CreateInput{
			ProductID:     product.ID,
			Amount:        10000,
			AffiliateCode: "no-such-code",
		})
		assert.ErrorIs(t, err, affiliates.ErrLinkNotFound)
	})
}

func TestProcessCheckoutSession(t *testing.T) {
	db := setupTestDB(t)
	service, enqueuer := newTestService(t, db)
	ctx := context.Background()

	product := createTestProduct(t, db, store.ProductStatusActive)
	link := createTestLink(t, db, product.ID)

	t.Run("Success - First delivery creates the order", func(t *testing.T) {
		order, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			SessionID:     "sess_abc",
			ProductID:     product.ID,
			Amount:        10000,
			AffiliateCode: link.Code,
		})

		require.NoError(t, err)
		require.NotNil(t, order.CheckoutSessionID)
		assert.Equal(t, "sess_abc", *order.CheckoutSessionID)
		require.NotNil(t, order.CreatorID)
		assert.Equal(t, link.CreatorID, *order.CreatorID)
		assert.Contains(t, enqueuer.orderIDs, order.ID)
	})

	t.Run("Success - Redelivery returns the same order", func(t *testing.T) {
		first, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			SessionID: "sess_abc",
			ProductID: product.ID,
			Amount:    10000,
		})
		require.NoError(t, err)

		second, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			SessionID: "sess_abc",
			ProductID: product.ID,
			Amount:    10000,
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.DB.Model(&store.Order{}).
			Where("checkout_session_id = ?", "sess_abc").
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Success - Unresolvable code still settles, unattributed", func(t *testing.T) {
		order, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			SessionID:     "sess_lost_attribution",
			ProductID:     product.ID,
			Amount:        10000,
			AffiliateCode: "stale-code",
		})

		require.NoError(t, err)
		assert.Nil(t, order.CreatorID)
		assert.Nil(t, order.AffiliateLinkID)
	})

	t.Run("Success - Direct creator id attribution", func(t *testing.T) {
		creatorID := uuid.NewString()
		order, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			SessionID: "sess_direct_creator",
			ProductID: product.ID,
			Amount:    10000,
			CreatorID: &creatorID,
		})

		require.NoError(t, err)
		require.NotNil(t, order.CreatorID)
		assert.Equal(t, creatorID, *order.CreatorID)
	})

	t.Run("Error - Missing session id", func(t *testing.T) {
		_, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			ProductID: product.ID,
			Amount:    10000,
		})
		assert.Error(t, err)
	})

	t.Run("Error - Unknown product", func(t *testing.T) {
		_, err := service.ProcessCheckoutSession(ctx, CheckoutSessionInput{
			SessionID: "sess_unknown_product",
			ProductID: uuid.NewString(),
			Amount:    10000,
		})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)
	service, _ := newTestService(t, db)
	ctx := context.Background()

	product := createTestProduct(t, db, store.ProductStatusActive)
	created, err := service.Create(ctx, "actor-1", CreateInput{
		ProductID: product.ID,
		Amount:    10000,
	})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		order, err := service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, order.ID)
	})

	t.Run("Error - Missing order", func(t *testing.T) {
		_, err := service.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
