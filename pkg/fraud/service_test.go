package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/creatorcart/backend/pkg/logger"
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

func createTestBrandAndProduct(t *testing.T, db *store.Client) (store.User, store.Product) {
	brand := store.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@test.com",
		Name:      "Test Brand",
		Role:      store.RoleBrand,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.DB.Create(&brand).Error)

	product := store.Product{
		ID:        uuid.NewString(),
		BrandID:   brand.ID,
		Name:      "Test Product",
		Price:     5000,
		Status:    store.ProductStatusActive,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.DB.Create(&product).Error)

	return brand, product
}

func createTestOrder(t *testing.T, db *store.Client, productID string, creatorID *string, amount int64, createdAt time.Time) store.Order {
	order := store.Order{
		ID:        uuid.NewString(),
		ProductID: productID,
		CreatorID: creatorID,
		Amount:    amount,
		Status:    store.OrderStatusCompleted,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.DB.Create(&order).Error)
	return order
}

func TestEvaluateOrderBurst(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	ctx := context.Background()

	_, product := createTestBrandAndProduct(t, db)
	creatorID := uuid.NewString()

	// Three orders inside the window: still under the threshold
	now := time.Now()
	for i := 0; i < 3; i++ {
		createTestOrder(t, db, product.ID, &creatorID, 5000, now.Add(-time.Duration(i)*time.Minute))
	}

	fourth := createTestOrder(t, db, product.ID, &creatorID, 5000, now)
	flags, err := service.EvaluateOrder(ctx, fourth.ID)
	require.NoError(t, err)
	assert.Empty(t, flags)

	// The next order tips the creator over the burst threshold
	fifth := createTestOrder(t, db, product.ID, &creatorID, 5000, now)
	flags, err = service.EvaluateOrder(ctx, fifth.ID)
	require.NoError(t, err)

	require.Len(t, flags, 1)
	assert.Equal(t, store.SeverityMedium, flags[0].Severity)
	assert.Equal(t, fifth.ID, flags[0].OrderID)
	require.NotNil(t, flags[0].CreatorID)
	assert.Equal(t, creatorID, *flags[0].CreatorID)
}

func TestEvaluateOrderSelfDealing(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	ctx := context.Background()

	brand, product := createTestBrandAndProduct(t, db)

	// Baseline orders so the amount-anomaly rule has a quiet average
	for i := 0; i < 3; i++ {
		createTestOrder(t, db, product.ID, nil, 5000, time.Now().Add(-time.Hour))
	}

	order := createTestOrder(t, db, product.ID, &brand.ID, 5000, time.Now())

	flags, err := service.EvaluateOrder(ctx, order.ID)
	require.NoError(t, err)

	require.Len(t, flags, 1)
	assert.Equal(t, store.SeverityHigh, flags[0].Severity)

	// Flags are persisted for the review queue
	var stored []store.FraudFlag
	require.NoError(t, db.DB.Where("order_id = ?", order.ID).Find(&stored).Error)
	assert.Len(t, stored, 1)
}

func TestEvaluateOrderCleanOrder(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	ctx := context.Background()

	_, product := createTestBrandAndProduct(t, db)
	creatorID := uuid.NewString()

	createTestOrder(t, db, product.ID, nil, 5000, time.Now().Add(-time.Hour))
	order := createTestOrder(t, db, product.ID, &creatorID, 5000, time.Now())

	flags, err := service.EvaluateOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestEvaluateOrderMissingOrder(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)

	_, err := service.EvaluateOrder(context.Background(), uuid.NewString())
	assert.Error(t, err)
}

func TestReviewFlag(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	ctx := context.Background()

	flag := store.FraudFlag{
		ID:        uuid.NewString(),
		OrderID:   uuid.NewString(),
		Reason:    "test reason",
		Severity:  store.SeverityLow,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.DB.Create(&flag).Error)

	reviewed, err := service.ReviewFlag(ctx, flag.ID, true, "false positive")
	require.NoError(t, err)
	assert.True(t, reviewed.Reviewed)
	assert.Equal(t, "false positive", reviewed.Note)

	// Immutable fields stay put
	var stored store.FraudFlag
	require.NoError(t, db.DB.First(&stored, "id = ?", flag.ID).Error)
	assert.Equal(t, "test reason", stored.Reason)
	assert.Equal(t, store.SeverityLow, stored.Severity)
	assert.True(t, stored.Reviewed)
}

func TestListFlags(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		flag := store.FraudFlag{
			ID:        uuid.NewString(),
			OrderID:   uuid.NewString(),
			Reason:    "test",
			Severity:  store.SeverityLow,
			Reviewed:  i == 0,
			CreatedAt: time.Now(),
		}
		require.NoError(t, db.DB.Create(&flag).Error)
	}

	t.Run("All flags", func(t *testing.T) {
		flags, err := service.ListFlags(ctx, false, 10)
		require.NoError(t, err)
		assert.Len(t, flags, 3)
	})

	t.Run("Unreviewed only", func(t *testing.T) {
		flags, err := service.ListFlags(ctx, true, 10)
		require.NoError(t, err)
		assert.Len(t, flags, 2)
	})
}

func TestWorkerEnqueue(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	worker := NewWorker(service, logger.New("error", "text"), 2)

	assert.True(t, worker.Enqueue("order-1"))
	assert.True(t, worker.Enqueue("order-2"))

	// Saturated queue drops instead of blocking
	assert.False(t, worker.Enqueue("order-3"))
}

func TestWorkerRunDrainsQueue(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, logger.New("error", "text"), nil)
	worker := NewWorker(service, logger.New("error", "text"), 8)

	_, product := createTestBrandAndProduct(t, db)
	order := createTestOrder(t, db, product.ID, nil, 50, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	require.True(t, worker.Enqueue(order.ID))

	// The low-amount probe flag shows up once the worker gets to it
	require.Eventually(t, func() bool {
		var count int64
		db.DB.Model(&store.FraudFlag{}).Where("order_id = ?", order.ID).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}
