package repository

import (
	"testing"
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		Name:         "Buyer",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Desk Lamp",
		Price:         35,
		Category:      model.CategoryOffice,
		Company:       model.CompanyIkea,
		StockQuantity: 10,
		UserID:        user.ID,
	}
	testDB.Create(product)

	return testDB, NewOrderRepository(testDB), user, product
}

func newOrder(user *model.User, product *model.Product, status model.OrderStatus) *model.Order {
	return &model.Order{
		UserID:      user.ID,
		Subtotal:    70,
		Tax:         7,
		ShippingFee: 5,
		Total:       82,
		Status:      status,
		OrderItems: []model.OrderItem{
			{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  2,
			},
		},
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	order := newOrder(user, product, model.OrderStatusPending)
	require.NoError(t, repo.Create(order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(82), found.Total)
	require.Len(t, found.OrderItems, 1)
	assert.Equal(t, product.Name, found.OrderItems[0].Name)
	assert.Equal(t, user.Email, found.User.Email)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByUserID(t *testing.T) {
	testDB, repo, user, product := setupOrderTest(t)

	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusPending)))

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleUser}
	testDB.Create(other)
	require.NoError(t, repo.Create(newOrder(other, product, model.OrderStatusPending)))

	orders, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, user.ID, orders[0].UserID)
}

func TestOrderRepository_FindAll(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusPending)))
	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusPaid)))

	all, err := repo.FindAll("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	paid, err := repo.FindAll(string(model.OrderStatusPaid))
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, model.OrderStatusPaid, paid[0].Status)
}

func TestOrderRepository_FindByPaymentIntentID(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	order := newOrder(user, product, model.OrderStatusPending)
	order.PaymentIntentID = "pi_test_123"
	require.NoError(t, repo.Create(order))

	found, err := repo.FindByPaymentIntentID("pi_test_123")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByPaymentIntentID("pi_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindStalePending(t *testing.T) {
	testDB, repo, user, product := setupOrderTest(t)

	stale := newOrder(user, product, model.OrderStatusPending)
	require.NoError(t, repo.Create(stale))
	testDB.Model(&model.Order{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-48*time.Hour))

	fresh := newOrder(user, product, model.OrderStatusPending)
	require.NoError(t, repo.Create(fresh))

	// Paid orders are never stale regardless of age
	paid := newOrder(user, product, model.OrderStatusPaid)
	require.NoError(t, repo.Create(paid))
	testDB.Model(&model.Order{}).Where("id = ?", paid.ID).
		Update("created_at", time.Now().Add(-48*time.Hour))

	found, err := repo.FindStalePending(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
}

func TestOrderRepository_Update(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	order := newOrder(user, product, model.OrderStatusPending)
	require.NoError(t, repo.Create(order))

	now := time.Now()
	order.Status = model.OrderStatusPaid
	order.PaymentProvider = "stripe"
	order.PaymentIntentID = "pi_test_456"
	order.PaidAt = &now
	require.NoError(t, repo.Update(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, found.Status)
	assert.Equal(t, "stripe", found.PaymentProvider)
	assert.NotNil(t, found.PaidAt)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	order := newOrder(user, product, model.OrderStatusPending)
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusCanceled))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, found.Status)
}

func TestOrderRepository_GetStats(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusPending)))
	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusPaid)))
	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusDelivered)))
	require.NoError(t, repo.Create(newOrder(user, product, model.OrderStatusCanceled)))

	stats, err := repo.GetStats()
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats["total_orders"])
	assert.EqualValues(t, 1, stats["pending_orders"])
	assert.EqualValues(t, 1, stats["paid_orders"])
	assert.EqualValues(t, 1, stats["delivered_orders"])
	assert.EqualValues(t, 1, stats["canceled_orders"])
	assert.EqualValues(t, 0, stats["failed_orders"])
	assert.EqualValues(t, 164, stats["total_revenue"])
}
