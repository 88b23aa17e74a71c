package service

import (
	"math"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"gorm.io/gorm"
)

// ConsistencyService keeps derived data in step with its source of truth:
// product rating aggregates with reviews, and cart/order snapshots with the
// catalog. Callers pass the transaction the triggering write runs in, so the
// derived updates commit or roll back together with it.
type ConsistencyService interface {
	RecalculateRating(tx *gorm.DB, productID uint) error
	SyncProductSnapshots(tx *gorm.DB, product *model.Product) error
	DetachProduct(tx *gorm.DB, productID uint) error
}

type consistencyService struct{}

func NewConsistencyService() ConsistencyService {
	return &consistencyService{}
}

// RecalculateRating recomputes a product's average rating and review count
// from its reviews. The average is the ceiling of the mean; a product with
// no reviews goes back to zero for both fields.
func (s *consistencyService) RecalculateRating(tx *gorm.DB, productID uint) error {
	logger.Debug("Recalculating product rating", map[string]interface{}{
		"product_id": productID,
	})

	var agg struct {
		Sum   int64
		Count int64
	}
	if err := tx.Model(&model.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(rating), 0) as sum, COUNT(*) as count").
		Scan(&agg).Error; err != nil {
		logger.Error("Failed to aggregate reviews for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	averageRating := 0
	if agg.Count > 0 {
		averageRating = int(math.Ceil(float64(agg.Sum) / float64(agg.Count)))
	}

	if err := tx.Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": averageRating,
			"num_of_reviews": agg.Count,
		}).Error; err != nil {
		logger.Error("Failed to update product rating aggregate", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Debug("Product rating recalculated", map[string]interface{}{
		"product_id":     productID,
		"average_rating": averageRating,
		"num_of_reviews": agg.Count,
	})
	return nil
}

// SyncProductSnapshots propagates the product's current name, image and
// price to cart items and to items of orders that have not been paid yet.
// Paid, delivered and otherwise settled orders keep the prices the buyer
// actually paid.
func (s *consistencyService) SyncProductSnapshots(tx *gorm.DB, product *model.Product) error {
	logger.Debug("Syncing product snapshots", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price,
	})

	snapshot := map[string]interface{}{
		"name":      product.Name,
		"image_url": product.ImageURL,
		"price":     product.Price,
	}

	if err := tx.Model(&model.CartItem{}).
		Where("product_id = ?", product.ID).
		Updates(snapshot).Error; err != nil {
		logger.Error("Failed to sync cart item snapshots", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	if err := tx.Model(&model.OrderItem{}).
		Where("product_id = ? AND order_id IN (?)",
			product.ID,
			tx.Session(&gorm.Session{NewDB: true}).Model(&model.Order{}).
				Select("id").Where("status <> ?", model.OrderStatusPaid),
		).
		Updates(snapshot).Error; err != nil {
		logger.Error("Failed to sync order item snapshots", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	orderIDs, err := s.unsettledOrderIDs(tx, product.ID)
	if err != nil {
		return err
	}
	if err := s.recomputeOrderTotals(tx, orderIDs); err != nil {
		return err
	}

	logger.Debug("Product snapshots synced", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// DetachProduct removes everything that hangs off a product before it is
// deleted: its reviews, every matching cart item, and its items on orders
// that have not been paid. Totals of the affected orders are recomputed.
func (s *consistencyService) DetachProduct(tx *gorm.DB, productID uint) error {
	logger.Debug("Detaching product relations", map[string]interface{}{
		"product_id": productID,
	})

	if err := tx.Where("product_id = ?", productID).
		Delete(&model.Review{}).Error; err != nil {
		logger.Error("Failed to delete reviews for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	// Every matching cart item goes, not just the first one found
	if err := tx.Where("product_id = ?", productID).
		Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	// Capture the affected orders before their items disappear
	orderIDs, err := s.unsettledOrderIDs(tx, productID)
	if err != nil {
		return err
	}

	if err := tx.Where("product_id = ? AND order_id IN (?)",
		productID,
		tx.Session(&gorm.Session{NewDB: true}).Model(&model.Order{}).
			Select("id").Where("status <> ?", model.OrderStatusPaid),
	).Delete(&model.OrderItem{}).Error; err != nil {
		logger.Error("Failed to delete order items for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	if err := s.recomputeOrderTotals(tx, orderIDs); err != nil {
		return err
	}

	logger.Debug("Product relations detached", map[string]interface{}{
		"product_id": productID,
	})
	return nil
}

// unsettledOrderIDs lists the non-paid orders that contain the product
func (s *consistencyService) unsettledOrderIDs(tx *gorm.DB, productID uint) ([]uint, error) {
	var ids []uint
	if err := tx.Model(&model.Order{}).
		Where("status <> ? AND id IN (?)",
			model.OrderStatusPaid,
			tx.Session(&gorm.Session{NewDB: true}).Model(&model.OrderItem{}).
				Select("order_id").Where("product_id = ?", productID),
		).Pluck("id", &ids).Error; err != nil {
		logger.Error("Failed to list unsettled orders for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return ids, nil
}

// recomputeOrderTotals refreshes subtotal and total of the given orders
// from their remaining items. Tax and shipping fee stay as quoted at
// checkout.
func (s *consistencyService) recomputeOrderTotals(tx *gorm.DB, orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return nil
	}

	var orders []model.Order
	if err := tx.Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
		logger.Error("Failed to load orders for total recompute", err, nil)
		return err
	}

	for _, order := range orders {
		var subtotal struct {
			Value float64
		}
		if err := tx.Model(&model.OrderItem{}).
			Where("order_id = ?", order.ID).
			Select("COALESCE(SUM(price * quantity), 0) as value").
			Scan(&subtotal).Error; err != nil {
			logger.Error("Failed to sum order items", err, map[string]interface{}{
				"order_id": order.ID,
			})
			return err
		}

		if err := tx.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"subtotal": subtotal.Value,
				"total":    subtotal.Value + order.Tax + order.ShippingFee,
			}).Error; err != nil {
			logger.Error("Failed to update order totals", err, map[string]interface{}{
				"order_id": order.ID,
			})
			return err
		}
	}

	return nil
}
