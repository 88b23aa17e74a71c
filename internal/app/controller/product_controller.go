package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/app/service"
	"github.com/dkwon/comfystore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Name          string                `json:"name" binding:"required"`
	Description   string                `json:"description"`
	Price         float64               `json:"price" binding:"required,gt=0"`
	Category      model.ProductCategory `json:"category" binding:"required"`
	Company       model.ProductCompany  `json:"company" binding:"required"`
	Colors        []string              `json:"colors"`
	Featured      bool                  `json:"featured"`
	FreeShipping  bool                  `json:"free_shipping"`
	StockQuantity int                   `json:"stock_quantity" binding:"gte=0"`
	ImageURL      string                `json:"image_url"`
}

const defaultPageSize = 20

// parseListOptions builds product list options from query parameters
func parseListOptions(c *gin.Context) service.ProductListOptions {
	opts := service.ProductListOptions{
		Search: c.Query("search"),
		Limit:  defaultPageSize,
	}

	if v := c.Query("category"); v != "" {
		category := model.ProductCategory(v)
		opts.Category = &category
	}
	if v := c.Query("company"); v != "" {
		company := model.ProductCompany(v)
		opts.Company = &company
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		opts.Featured = &featured
	}
	if v := c.Query("free_shipping"); v != "" {
		freeShipping := v == "true"
		opts.FreeShipping = &freeShipping
	}

	switch c.Query("sort") {
	case "price":
		opts.Sort = repository.ProductSortPrice
	case "rating":
		opts.Sort = repository.ProductSortRating
	case "name":
		opts.Sort = repository.ProductSortName
	default:
		opts.Sort = repository.ProductSortCreatedAt
	}
	opts.SortAscending = c.Query("order") == "asc"

	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 1 {
		opts.Offset = (v - 1) * opts.Limit
	}

	return opts
}

// ListProducts returns the product catalog with optional filters
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := parseListOptions(c)

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrInvalidCompany) {
			log.Warn("Invalid product filter", map[string]interface{}{
				"category": c.Query("category"),
				"company":  c.Query("company"),
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid category or company filter",
			})
			return
		}
		log.Error("Failed to fetch products", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := ctrl.productService.GetProductByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch product",
		})
		return
	}

	log.Info("Product fetched successfully", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct lists a new product owned by the authenticated user
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	log.Debug("Creating product", map[string]interface{}{
		"name":     req.Name,
		"category": req.Category,
		"company":  req.Company,
		"price":    req.Price,
	})

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Company:       req.Company,
		Colors:        pq.StringArray(req.Colors),
		Featured:      req.Featured,
		FreeShipping:  req.FreeShipping,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		UserID:        userID,
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrInvalidCompany) ||
			errors.Is(err, service.ErrInvalidPrice) {
			log.Warn("Product validation failed", map[string]interface{}{
				"name":  req.Name,
				"error": err.Error(),
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name":     req.Name,
			"category": req.Category,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct updates a product owned by the caller (admins may edit any)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	log.Debug("Updating product", map[string]interface{}{
		"product_id": id,
		"name":       req.Name,
	})

	product := &model.Product{
		ID:            uint(id),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Company:       req.Company,
		Colors:        pq.StringArray(req.Colors),
		Featured:      req.Featured,
		FreeShipping:  req.FreeShipping,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	}

	updated, err := ctrl.productService.UpdateProduct(userID, role, product)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found for update", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrProductAccessDenied) {
			log.Warn("Product update denied", map[string]interface{}{
				"product_id": id,
				"user_id":    userID,
			})
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to update this product",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrInvalidCompany) ||
			errors.Is(err, service.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update product",
		})
		return
	}

	log.Info("Product updated successfully", map[string]interface{}{
		"product_id": updated.ID,
		"name":       updated.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": updated,
	})
}

// DeleteProduct removes a product owned by the caller (admins may remove any)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	log.Debug("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if err := ctrl.productService.DeleteProduct(userID, role, uint(id)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found for deletion", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrProductAccessDenied) {
			log.Warn("Product deletion denied", map[string]interface{}{
				"product_id": id,
				"user_id":    userID,
			})
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to delete this product",
			})
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete product",
		})
		return
	}

	log.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// ExportCatalog downloads the product catalog as an XLSX workbook (Admin only)
// GET /api/v1/products/export
func (ctrl *ProductController) ExportCatalog(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.productService.ExportCatalog()
	if err != nil {
		log.Error("Failed to export product catalog", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export product catalog",
		})
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	log.Info("Product catalog exported", map[string]interface{}{
		"bytes": len(data),
	})
}
