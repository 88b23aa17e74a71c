package service

import (
	"errors"
	"fmt"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrDuplicateReview    = errors.New("review already exists for this product")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrReviewAccessDenied = errors.New("review access denied")
)

type ReviewListOptions struct {
	Offset        int
	Limit         int
	SortBy        repository.ReviewSort
	SortAscending bool
}

type ReviewService interface {
	CreateReview(userID, productID uint, rating int, title, comment string) (*model.Review, error)
	GetProductReviews(productID uint, opts ReviewListOptions) ([]model.Review, int64, error)
	GetRecentProductReviews(productID uint, limit int) ([]model.Review, error)
	GetUserReviews(userID uint, offset, limit int) ([]model.Review, int64, error)
	UpdateReview(userID uint, role model.UserRole, reviewID uint, rating int, title, comment string) (*model.Review, error)
	DeleteReview(userID uint, role model.UserRole, reviewID uint) error
}

type reviewService struct {
	reviewRepo  *repository.ReviewRepository
	productRepo repository.ProductRepository
	consistency ConsistencyService
	db          *gorm.DB
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	productRepo repository.ProductRepository,
	consistency ConsistencyService,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		consistency: consistency,
		db:          db,
	}
}

// CreateReview adds a review and refreshes the product's rating aggregate
// in the same transaction. A user can review a product only once.
func (s *reviewService) CreateReview(userID, productID uint, rating int, title, comment string) (*model.Review, error) {
	logger.Info("Creating review", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})

	if rating < 1 || rating > 5 {
		logger.Warn("Review rating out of range", map[string]interface{}{
			"user_id": userID,
			"rating":  rating,
		})
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Review target product not found", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if _, err := s.reviewRepo.GetReviewByUserAndProduct(userID, productID); err == nil {
		logger.Warn("Duplicate review rejected", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check for existing review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Title:     title,
		Comment:   comment,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	if err := tx.Create(review).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	if err := s.consistency.RecalculateRating(tx, productID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit review creation transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Review created successfully", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": productID,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(productID uint, opts ReviewListOptions) ([]model.Review, int64, error) {
	logger.Debug("Fetching product reviews", map[string]interface{}{
		"product_id": productID,
		"offset":     opts.Offset,
		"limit":      opts.Limit,
	})

	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	reviews, total, err := s.reviewRepo.GetReviewsByProductID(productID, opts.Offset, opts.Limit, opts.SortBy, opts.SortAscending)
	if err != nil {
		logger.Error("Failed to fetch product reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, 0, err
	}

	return reviews, total, nil
}

// GetRecentProductReviews returns the newest reviews for a product detail page.
func (s *reviewService) GetRecentProductReviews(productID uint, limit int) ([]model.Review, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	reviews, err := s.reviewRepo.GetRecentReviews(productID, limit)
	if err != nil {
		logger.Error("Failed to fetch recent reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	return reviews, nil
}

func (s *reviewService) GetUserReviews(userID uint, offset, limit int) ([]model.Review, int64, error) {
	logger.Debug("Fetching user reviews", map[string]interface{}{
		"user_id": userID,
	})

	if limit <= 0 {
		limit = 20
	}

	reviews, total, err := s.reviewRepo.GetReviewsByUserID(userID, offset, limit)
	if err != nil {
		logger.Error("Failed to fetch user reviews", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	return reviews, total, nil
}

// UpdateReview edits a review and refreshes the product's rating aggregate
// in the same transaction.
func (s *reviewService) UpdateReview(userID uint, role model.UserRole, reviewID uint, rating int, title, comment string) (*model.Review, error) {
	logger.Info("Updating review", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})

	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		logger.Error("Failed to fetch review for update", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}

	if review.UserID != userID && role != model.RoleAdmin {
		logger.Warn("Review update denied: ownership mismatch", map[string]interface{}{
			"review_id": reviewID,
			"user_id":   userID,
			"owner_id":  review.UserID,
		})
		return nil, ErrReviewAccessDenied
	}

	review.Rating = rating
	review.Title = title
	review.Comment = comment

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"review_id": reviewID,
			})
		}
	}()

	if err := tx.Save(review).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}

	if err := s.consistency.RecalculateRating(tx, review.ProductID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit review update transaction", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}

	logger.Info("Review updated successfully", map[string]interface{}{
		"review_id": reviewID,
	})
	return review, nil
}

// DeleteReview removes a review and refreshes the product's rating
// aggregate in the same transaction.
func (s *reviewService) DeleteReview(userID uint, role model.UserRole, reviewID uint) error {
	logger.Info("Deleting review", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})

	review, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		logger.Error("Failed to fetch review for delete", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	if review.UserID != userID && role != model.RoleAdmin {
		logger.Warn("Review delete denied: ownership mismatch", map[string]interface{}{
			"review_id": reviewID,
			"user_id":   userID,
			"owner_id":  review.UserID,
		})
		return ErrReviewAccessDenied
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review delete, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"review_id": reviewID,
			})
		}
	}()

	if err := tx.Delete(&model.Review{}, reviewID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	if err := s.consistency.RecalculateRating(tx, review.ProductID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit review delete transaction", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	logger.Info("Review deleted successfully", map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}
