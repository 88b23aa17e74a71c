package repository

import (
	"github.com/dkwon/comfystore-backend/internal/app/model"

	"gorm.io/gorm"
)

type ReviewSort string

const (
	ReviewSortCreatedAt ReviewSort = "created_at"
	ReviewSortRating    ReviewSort = "rating"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview creates a review
func (r *ReviewRepository) CreateReview(review *model.Review) error {
	return r.db.Create(review).Error
}

// GetReviewByID fetches a review by ID
func (r *ReviewRepository) GetReviewByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Preload("User").First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByProductID lists reviews for a product. Sorting goes through
// the ReviewSort switch so request input never reaches the ORDER BY clause.
func (r *ReviewRepository) GetReviewsByProductID(productID uint, offset, limit int, sortBy ReviewSort, ascending bool) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("product_id = ?", productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	var orderClause string
	switch sortBy {
	case ReviewSortRating:
		orderClause = "rating " + direction + ", created_at DESC"
	case ReviewSortCreatedAt:
		fallthrough
	default:
		orderClause = "created_at " + direction
	}

	err := query.Preload("User").
		Order(orderClause).
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// GetRecentReviews lists the newest reviews for a product
func (r *ReviewRepository) GetRecentReviews(productID uint, limit int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Where("product_id = ?", productID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetReviewsByUserID lists reviews written by a user
func (r *ReviewRepository) GetReviewsByUserID(userID uint, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Product").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// GetReviewByUserAndProduct fetches the review a user left on a product
func (r *ReviewRepository) GetReviewByUserAndProduct(userID, productID uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview updates a review
func (r *ReviewRepository) UpdateReview(review *model.Review) error {
	return r.db.Save(review).Error
}

// DeleteReview deletes a review
func (r *ReviewRepository) DeleteReview(id uint) error {
	return r.db.Delete(&model.Review{}, id).Error
}
