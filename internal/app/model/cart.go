package model

import (
	"time"

	"gorm.io/gorm"
)

// CartItem stores a snapshot of the product at the time it was added.
// Snapshot fields are kept in line with the product while the item sits
// in the cart, so the price shown at checkout is never stale.
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Name      string         `gorm:"not null" json:"name"`
	ImageURL  string         `json:"image_url"`
	Price     float64        `gorm:"not null" json:"price"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal returns the line total for this cart item.
func (c *CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}
