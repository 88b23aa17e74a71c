package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductAccessDenied = errors.New("product access denied")
	ErrInvalidCategory     = errors.New("invalid product category")
	ErrInvalidCompany      = errors.New("invalid product company")
	ErrInvalidPrice        = errors.New("invalid product price")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

type ProductListOptions struct {
	Category      *model.ProductCategory
	Company       *model.ProductCompany
	Featured      *bool
	FreeShipping  *bool
	Search        string
	Sort          repository.ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(userID uint, role model.UserRole, product *model.Product) (*model.Product, error)
	DeleteProduct(userID uint, role model.UserRole, id uint) error
	ExportCatalog() ([]byte, error)
}

type productService struct {
	productRepo repository.ProductRepository
	consistency ConsistencyService
	db          *gorm.DB
}

func NewProductService(productRepo repository.ProductRepository, consistency ConsistencyService, db *gorm.DB) ProductService {
	return &productService{
		productRepo: productRepo,
		consistency: consistency,
		db:          db,
	}
}

func validateProduct(product *model.Product) error {
	if !product.Category.Valid() {
		return ErrInvalidCategory
	}
	if !product.Company.Valid() {
		return ErrInvalidCompany
	}

	if product.Price <= 0 {
		return ErrInvalidPrice
	}

	return nil
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category": opts.Category,
		"company":  opts.Company,
		"search":   opts.Search,
		"sort":     opts.Sort,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})

	if opts.Category != nil && !opts.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if opts.Company != nil && !opts.Company.Valid() {
		return nil, ErrInvalidCompany
	}

	filter := repository.ProductFilter{
		Category:      opts.Category,
		Company:       opts.Company,
		Featured:      opts.Featured,
		FreeShipping:  opts.FreeShipping,
		Search:        opts.Search,
		SortBy:        opts.Sort,
		SortAscending: opts.SortAscending,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}

	logger.Info("Products listed successfully", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	logger.Info("Creating product", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
		"company":  product.Company,
		"user_id":  product.UserID,
	})

	if err := validateProduct(product); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"name":   product.Name,
			"reason": err.Error(),
		})
		return err
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name":    product.Name,
			"user_id": product.UserID,
		})
		return err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

// UpdateProduct applies catalog changes and carries them through to cart
// items and unpaid orders in the same transaction.
func (s *productService) UpdateProduct(userID uint, role model.UserRole, product *model.Product) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": product.ID,
		"user_id":    userID,
	})

	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for update", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	if existing.UserID != userID && role != model.RoleAdmin {
		logger.Warn("Product update denied: ownership mismatch", map[string]interface{}{
			"product_id": product.ID,
			"user_id":    userID,
			"owner_id":   existing.UserID,
		})
		return nil, ErrProductAccessDenied
	}

	if err := validateProduct(product); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"product_id": product.ID,
			"reason":     err.Error(),
		})
		return nil, err
	}

	product.UserID = existing.UserID
	product.AverageRating = existing.AverageRating
	product.NumOfReviews = existing.NumOfReviews
	product.CreatedAt = existing.CreatedAt

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during product update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"product_id": product.ID,
			})
		}
	}()

	if err := tx.Save(product).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	if err := s.consistency.SyncProductSnapshots(tx, product); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit product update transaction", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	logger.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	return s.productRepo.FindByID(product.ID)
}

// DeleteProduct removes the product together with its reviews, cart items
// and unpaid order items, all in one transaction.
func (s *productService) DeleteProduct(userID uint, role model.UserRole, id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
		"user_id":    userID,
	})

	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to fetch product for delete", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	if existing.UserID != userID && role != model.RoleAdmin {
		logger.Warn("Product delete denied: ownership mismatch", map[string]interface{}{
			"product_id": id,
			"user_id":    userID,
			"owner_id":   existing.UserID,
		})
		return ErrProductAccessDenied
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during product delete, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"product_id": id,
			})
		}
	}()

	if err := s.consistency.DetachProduct(tx, id); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&model.Product{}, id).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit product delete transaction", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// ExportCatalog writes the full catalog to an XLSX workbook
func (s *productService) ExportCatalog() ([]byte, error) {
	logger.Info("Exporting product catalog", nil)

	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to load products for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Price", "Category", "Company", "Colors", "Featured", "Free Shipping", "Stock", "Avg Rating", "Reviews"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range products {
		values := []interface{}{
			p.ID,
			p.Name,
			p.Price,
			string(p.Category),
			string(p.Company),
			strings.Join(p.Colors, ","),
			p.Featured,
			p.FreeShipping,
			p.StockQuantity,
			p.AverageRating,
			p.NumOfReviews,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write catalog workbook", err, nil)
		return nil, err
	}

	logger.Info("Product catalog exported", map[string]interface{}{
		"count": len(products),
	})
	return buf.Bytes(), nil
}
