package router

import (
	"github.com/dkwon/comfystore-backend/config"
	"github.com/dkwon/comfystore-backend/internal/app/controller"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	reviewController  *controller.ReviewController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	paymentController *controller.PaymentController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	userRepo          repository.UserRepository
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	reviewController *controller.ReviewController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	paymentController *controller.PaymentController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	userRepo repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		reviewController:  reviewController,
		cartController:    cartController,
		orderController:   orderController,
		paymentController: paymentController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		userRepo:          userRepo,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "ComfyStore API is running",
		})
	})

	// Purchases require a verified email; browsing does not
	requireVerified := r.authMiddleware.RequireVerifiedEmail(r.userRepo)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/verify-email", r.authController.VerifyEmail)
			auth.POST("/resend-verification", r.authController.ResendVerification)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/export",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.productController.ExportCatalog,
			)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)
			products.GET("/:id/reviews/recent", r.reviewController.GetRecentProductReviews)

			// Any verified user can sell; the service restricts updates and
			// deletes to the product's owner or an admin
			products.POST("",
				r.authMiddleware.Authenticate(),
				requireVerified,
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.Authenticate(),
				requireVerified,
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				requireVerified,
				r.productController.DeleteProduct,
			)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.POST("", requireVerified, r.reviewController.CreateReview)
			reviews.PUT("/:id", r.reviewController.UpdateReview)
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
		}

		v1.GET("/users/me/reviews",
			r.authMiddleware.Authenticate(),
			r.reviewController.GetUserReviews,
		)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/all",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.GetAllOrders,
			)
			orders.GET("/stats",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.GetOrderStats,
			)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("", requireVerified, r.orderController.Checkout)

			orders.PUT("/:id/status",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.UpdateOrderStatus,
			)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/stripe/intent",
				r.authMiddleware.Authenticate(),
				requireVerified,
				r.paymentController.CreateStripeIntent,
			)
			// Stripe redirects here after confirmation; the intent itself
			// is verified server-side, so no session is required
			payments.POST("/stripe/complete", r.paymentController.CompleteStripePayment)
			payments.POST("/paypal/complete",
				r.authMiddleware.Authenticate(),
				requireVerified,
				r.paymentController.CompletePayPalPayment,
			)
			payments.GET("/orders/:id",
				r.authMiddleware.Authenticate(),
				r.paymentController.GetPaymentStatus,
			)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			upload.POST("/image", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
