package model

import (
	"time"
)

// Review is hard-deleted, not soft-deleted: the (user, product) unique
// index must free up on delete so the user can review the product again.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5
	Title     string    `gorm:"not null" json:"title"`
	Comment   string    `gorm:"type:text" json:"comment"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
