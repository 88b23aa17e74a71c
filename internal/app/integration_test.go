package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/controller"
	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/app/service"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/dkwon/comfystore-backend/internal/middleware"
	"github.com/dkwon/comfystore-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	consistencyService := service.NewConsistencyService()
	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo, consistencyService, testDB)
	reviewService := service.NewReviewService(reviewRepo, productRepo, consistencyService, testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, testDB)

	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	reviewController := controller.NewReviewController(reviewService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")
	requireVerified := authMiddleware.RequireVerifiedEmail(userRepo)

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/verify-email", authController.VerifyEmail)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	products := router.Group("/api/v1/products")
	{
		products.GET("", productController.ListProducts)
		products.GET("/:id", productController.GetProductByID)
		products.GET("/:id/reviews", reviewController.GetProductReviews)
		products.POST("", authMiddleware.Authenticate(), requireVerified, productController.CreateProduct)
	}

	reviews := router.Group("/api/v1/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.POST("", requireVerified, reviewController.CreateReview)
	}

	cart := router.Group("/api/v1/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("", cartController.GetCart)
		cart.POST("", cartController.AddToCart)
		cart.PUT("/:id", cartController.UpdateCartItem)
		cart.DELETE("/:id", cartController.RemoveFromCart)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.GET("", orderController.GetOrders)
		orders.GET("/:id", orderController.GetOrderByID)
		orders.POST("", requireVerified, orderController.Checkout)
	}

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func TestCompleteShoppingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// 1. Register a new user
	t.Log("Step 1: Register user")
	registerReq := map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
		"name":     "Test Buyer",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// 2. Verify the email address
	t.Log("Step 2: Verify email")
	util.StoreEmailVerificationCode("buyer@example.com", "123456")
	verifyReq := map[string]string{
		"email": "buyer@example.com",
		"code":  "123456",
	}
	body, _ = json.Marshal(verifyReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/verify-email", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// 3. Login
	t.Log("Step 3: Login")
	loginReq := map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
	}
	body, _ = json.Marshal(loginReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var loginResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &loginResp)
	tokens := loginResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// 4. Seed the catalog directly as an admin would
	t.Log("Step 4: Seed catalog")
	adminUser := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Name:         "Admin",
		Role:         model.RoleAdmin,
		IsVerified:   true,
	}
	ts.DB.Create(adminUser)

	product := &model.Product{
		Name:          "Leather Sofa",
		Description:   "Three-seat leather sofa",
		Price:         1299.99,
		Category:      model.CategoryBedroom,
		Company:       model.CompanyMarcos,
		StockQuantity: 10,
		ImageURL:      "https://example.com/sofa.jpg",
		UserID:        adminUser.ID,
	}
	ts.DB.Create(product)

	// 5. Browse products
	t.Log("Step 5: Browse products")
	req = httptest.NewRequest("GET", "/api/v1/products", nil)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var productsResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &productsResp)
	assert.NotNil(t, productsResp["products"])

	// 6. Add product to cart
	t.Log("Step 6: Add to cart")
	addToCartReq := map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}
	body, _ = json.Marshal(addToCartReq)
	req = httptest.NewRequest("POST", "/api/v1/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// 7. View cart
	t.Log("Step 7: View cart")
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &cartResp)
	cartItems := cartResp["cart_items"].([]interface{})
	assert.Len(t, cartItems, 1)

	// 8. Checkout
	t.Log("Step 8: Checkout")
	checkoutReq := map[string]interface{}{
		"tax":          260,
		"shipping_fee": 49.99,
	}
	body, _ = json.Marshal(checkoutReq)
	req = httptest.NewRequest("POST", "/api/v1/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var orderResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &orderResp)
	order := orderResp["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])
	assert.InDelta(t, 2599.98, order["subtotal"].(float64), 0.001)
	assert.InDelta(t, 2909.97, order["total"].(float64), 0.001)

	// 9. View order history
	t.Log("Step 9: View order history")
	req = httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ordersResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &ordersResp)
	orders := ordersResp["orders"].([]interface{})
	assert.Len(t, orders, 1)

	// 10. Cart is empty after checkout
	t.Log("Step 10: Verify cart is empty")
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	json.Unmarshal(w.Body.Bytes(), &cartResp)
	cartItems = cartResp["cart_items"].([]interface{})
	assert.Len(t, cartItems, 0)

	// 11. Leave a review
	t.Log("Step 11: Leave a review")
	reviewReq := map[string]interface{}{
		"product_id": product.ID,
		"rating":     5,
		"title":      "Very comfortable",
		"comment":    "Worth every penny.",
	}
	body, _ = json.Marshal(reviewReq)
	req = httptest.NewRequest("POST", "/api/v1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// 12. The product aggregate reflects the review
	t.Log("Step 12: Verify product rating")
	var ratedProduct model.Product
	ts.DB.First(&ratedProduct, product.ID)
	assert.Equal(t, 5, ratedProduct.AverageRating)
	assert.Equal(t, 1, ratedProduct.NumOfReviews)

	reviewsPath := fmt.Sprintf("/api/v1/products/%d/reviews", product.ID)
	req = httptest.NewRequest("GET", reviewsPath, nil)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// Register
	registerReq := map[string]string{
		"email":    "test@example.com",
		"password": "password123",
		"name":     "Test User",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Login is rejected until the email is verified
	loginReq := map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}
	body, _ = json.Marshal(loginReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Verify and login
	util.StoreEmailVerificationCode("test@example.com", "654321")
	verifyReq := map[string]string{
		"email": "test@example.com",
		"code":  "654321",
	}
	body, _ = json.Marshal(verifyReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/verify-email", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	body, _ = json.Marshal(loginReq)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var loginResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &loginResp)
	tokens := loginResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// Get user info
	req = httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()

	ts.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var meResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &meResp)
	user := meResp["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "Test User", user["name"])
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/cart",
		"/api/v1/orders",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			req := httptest.NewRequest("GET", route, nil)
			w := httptest.NewRecorder()

			ts.Router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
