package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/app/service"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/dkwon/comfystore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.User, *model.Product) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{
		Email:        "customer@example.com",
		PasswordHash: "hash",
		Name:         "Customer",
		Role:         model.RoleUser,
		IsVerified:   true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Office Chair",
		Price:         89.99,
		Category:      model.CategoryOffice,
		Company:       model.CompanyMarcos,
		StockQuantity: 30,
		UserID:        user.ID,
	}
	testDB.Create(product)

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)

	ctrl := NewCartController(cartService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	cart := router.Group("/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("", ctrl.GetCart)
		cart.POST("", ctrl.AddToCart)
		cart.PUT("/:id", ctrl.UpdateCartItem)
		cart.DELETE("/:id", ctrl.RemoveFromCart)
		cart.DELETE("", ctrl.ClearCart)
	}

	return router, testDB, user, product
}

func addCartItemRequest(t *testing.T, router *gin.Engine, token string, productID uint, quantity int) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(AddToCartRequest{ProductID: productID, Quantity: quantity})
	req := httptest.NewRequest("POST", "/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	return w
}

func TestCartController_AddToCart(t *testing.T) {
	router, _, user, product := setupCartControllerTest(t)
	token := tokenFor(t, user)

	w := addCartItemRequest(t, router, token, product.ID, 2)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	itemMap := response["cart_item"].(map[string]interface{})
	assert.Equal(t, "Office Chair", itemMap["name"])
	assert.EqualValues(t, 89.99, itemMap["price"])
	assert.EqualValues(t, 2, itemMap["quantity"])
}

func TestCartController_AddToCart_ProductNotFound(t *testing.T) {
	router, _, user, _ := setupCartControllerTest(t)
	token := tokenFor(t, user)

	w := addCartItemRequest(t, router, token, 9999, 1)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_AddToCart_InvalidQuantity(t *testing.T) {
	router, _, user, product := setupCartControllerTest(t)
	token := tokenFor(t, user)

	// binding rejects non-positive quantities before the service sees them
	w := addCartItemRequest(t, router, token, product.ID, 0)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_AddToCart_Unauthenticated(t *testing.T) {
	router, _, _, product := setupCartControllerTest(t)

	body, _ := json.Marshal(AddToCartRequest{ProductID: product.ID, Quantity: 1})
	req := httptest.NewRequest("POST", "/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartController_GetCart(t *testing.T) {
	router, _, user, product := setupCartControllerTest(t)
	token := tokenFor(t, user)

	require.Equal(t, http.StatusCreated, addCartItemRequest(t, router, token, product.ID, 3).Code)

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.EqualValues(t, 1, response["count"])
	assert.EqualValues(t, 3, response["num_items"])
	assert.InDelta(t, 269.97, response["total"].(float64), 0.001)
}

func TestCartController_UpdateCartItem(t *testing.T) {
	router, testDB, user, product := setupCartControllerTest(t)
	token := tokenFor(t, user)

	require.Equal(t, http.StatusCreated, addCartItemRequest(t, router, token, product.ID, 1).Code)

	var item model.CartItem
	require.NoError(t, testDB.Where("user_id = ?", user.ID).First(&item).Error)

	body, _ := json.Marshal(UpdateCartRequest{Quantity: 4})
	req := httptest.NewRequest("PUT", fmt.Sprintf("/cart/%d", item.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	itemMap := response["cart_item"].(map[string]interface{})
	assert.EqualValues(t, 4, itemMap["quantity"])
}

func TestCartController_UpdateCartItem_NotFound(t *testing.T) {
	router, _, user, _ := setupCartControllerTest(t)
	token := tokenFor(t, user)

	body, _ := json.Marshal(UpdateCartRequest{Quantity: 2})
	req := httptest.NewRequest("PUT", "/cart/9999", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_RemoveFromCart(t *testing.T) {
	router, testDB, user, product := setupCartControllerTest(t)
	token := tokenFor(t, user)

	require.Equal(t, http.StatusCreated, addCartItemRequest(t, router, token, product.ID, 1).Code)

	var item model.CartItem
	require.NoError(t, testDB.Where("user_id = ?", user.ID).First(&item).Error)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/cart/%d", item.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}

func TestCartController_ClearCart(t *testing.T) {
	router, testDB, user, product := setupCartControllerTest(t)
	token := tokenFor(t, user)

	second := &model.Product{
		Name: "Desk Mat", Price: 19.99,
		Category: model.CategoryOffice, Company: model.CompanyIkea,
		UserID: user.ID,
	}
	testDB.Create(second)

	require.Equal(t, http.StatusCreated, addCartItemRequest(t, router, token, product.ID, 1).Code)
	require.Equal(t, http.StatusCreated, addCartItemRequest(t, router, token, second.ID, 2).Code)

	req := httptest.NewRequest("DELETE", "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}
