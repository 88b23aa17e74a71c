package service

import (
	"testing"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupConsistencyTest(t *testing.T) (ConsistencyService, *gorm.DB, *model.User, *model.Product) {
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
		Name:          "Armchair",
		Price:         120,
		Category:      model.CategoryBedroom,
		Company:       model.CompanyLiddy,
		StockQuantity: 5,
		UserID:        user.ID,
	}
	testDB.Create(product)

	return NewConsistencyService(), testDB, user, product
}

func TestConsistencyService_RecalculateRating(t *testing.T) {
	consistency, testDB, user, product := setupConsistencyTest(t)

	second := &model.User{Email: "second@example.com", PasswordHash: "hash", Name: "Second", Role: model.RoleUser}
	testDB.Create(second)

	testDB.Create(&model.Review{UserID: user.ID, ProductID: product.ID, Rating: 4, Title: "Good"})
	testDB.Create(&model.Review{UserID: second.ID, ProductID: product.ID, Rating: 3, Title: "Okay"})

	require.NoError(t, consistency.RecalculateRating(testDB, product.ID))

	var updated model.Product
	testDB.First(&updated, product.ID)
	// ceil((4+3)/2) = 4
	assert.Equal(t, 4, updated.AverageRating)
	assert.Equal(t, 2, updated.NumOfReviews)
}

func TestConsistencyService_RecalculateRating_NoReviews(t *testing.T) {
	consistency, testDB, _, product := setupConsistencyTest(t)

	testDB.Model(&model.Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{"average_rating": 5, "num_of_reviews": 3})

	require.NoError(t, consistency.RecalculateRating(testDB, product.ID))

	var updated model.Product
	testDB.First(&updated, product.ID)
	assert.Zero(t, updated.AverageRating)
	assert.Zero(t, updated.NumOfReviews)
}

func TestConsistencyService_SyncProductSnapshots(t *testing.T) {
	consistency, testDB, user, product := setupConsistencyTest(t)

	cartItem := &model.CartItem{
		UserID: user.ID, ProductID: product.ID,
		Name: product.Name, Price: product.Price, Quantity: 1,
	}
	testDB.Create(cartItem)

	pending := &model.Order{
		UserID: user.ID, Subtotal: 120, Tax: 12, ShippingFee: 8, Total: 140,
		Status: model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Name: product.Name, Price: 120, Quantity: 1},
		},
	}
	testDB.Create(pending)

	paid := &model.Order{
		UserID: user.ID, Subtotal: 120, Total: 120,
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Name: product.Name, Price: 120, Quantity: 1},
		},
	}
	testDB.Create(paid)

	product.Name = "Velvet Armchair"
	product.Price = 150
	require.NoError(t, consistency.SyncProductSnapshots(testDB, product))

	var syncedCart model.CartItem
	testDB.First(&syncedCart, cartItem.ID)
	assert.Equal(t, "Velvet Armchair", syncedCart.Name)
	assert.Equal(t, float64(150), syncedCart.Price)

	var syncedPending model.Order
	testDB.Preload("OrderItems").First(&syncedPending, pending.ID)
	assert.Equal(t, float64(150), syncedPending.OrderItems[0].Price)
	assert.Equal(t, float64(150), syncedPending.Subtotal)
	assert.Equal(t, float64(170), syncedPending.Total)

	// Settled orders keep the transacted price
	var untouchedPaid model.Order
	testDB.Preload("OrderItems").First(&untouchedPaid, paid.ID)
	assert.Equal(t, float64(120), untouchedPaid.OrderItems[0].Price)
	assert.Equal(t, float64(120), untouchedPaid.Total)
}

func TestConsistencyService_DetachProduct(t *testing.T) {
	consistency, testDB, user, product := setupConsistencyTest(t)

	other := &model.Product{
		Name: "Side Table", Price: 60,
		Category: model.CategoryBedroom, Company: model.CompanyLiddy,
		UserID: user.ID,
	}
	testDB.Create(other)

	testDB.Create(&model.Review{UserID: user.ID, ProductID: product.ID, Rating: 5, Title: "Great"})
	testDB.Create(&model.CartItem{UserID: user.ID, ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 2})

	pending := &model.Order{
		UserID: user.ID, Subtotal: 180, Tax: 10, ShippingFee: 10, Total: 200,
		Status: model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Name: product.Name, Price: 120, Quantity: 1},
			{ProductID: other.ID, Name: other.Name, Price: 60, Quantity: 1},
		},
	}
	testDB.Create(pending)

	paid := &model.Order{
		UserID: user.ID, Subtotal: 120, Total: 120,
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Name: product.Name, Price: 120, Quantity: 1},
		},
	}
	testDB.Create(paid)

	require.NoError(t, consistency.DetachProduct(testDB, product.ID))

	var reviewCount, cartCount int64
	testDB.Model(&model.Review{}).Where("product_id = ?", product.ID).Count(&reviewCount)
	testDB.Model(&model.CartItem{}).Where("product_id = ?", product.ID).Count(&cartCount)
	assert.Zero(t, reviewCount)
	assert.Zero(t, cartCount)

	// The pending order loses the item and its totals shrink
	var detached model.Order
	testDB.Preload("OrderItems").First(&detached, pending.ID)
	require.Len(t, detached.OrderItems, 1)
	assert.Equal(t, other.ID, detached.OrderItems[0].ProductID)
	assert.Equal(t, float64(60), detached.Subtotal)
	assert.Equal(t, float64(80), detached.Total)

	// The paid order keeps its history
	var settled model.Order
	testDB.Preload("OrderItems").First(&settled, paid.ID)
	require.Len(t, settled.OrderItems, 1)
	assert.Equal(t, float64(120), settled.Total)
}
