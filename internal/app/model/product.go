package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryOffice  ProductCategory = "office"
	CategoryKitchen ProductCategory = "kitchen"
	CategoryBedroom ProductCategory = "bedroom"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryOffice, CategoryKitchen, CategoryBedroom:
		return true
	}
	return false
}

type ProductCompany string

const (
	CompanyIkea   ProductCompany = "ikea"
	CompanyLiddy  ProductCompany = "liddy"
	CompanyMarcos ProductCompany = "marcos"
)

func (c ProductCompany) Valid() bool {
	switch c {
	case CompanyIkea, CompanyLiddy, CompanyMarcos:
		return true
	}
	return false
}

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	ImageURL      string          `json:"image_url"`
	Category      ProductCategory `gorm:"type:varchar(50);index" json:"category"`
	Company       ProductCompany  `gorm:"type:varchar(50);index" json:"company"`
	Colors        pq.StringArray  `gorm:"type:text[]" json:"colors"`
	Featured      bool            `gorm:"default:false" json:"featured"`
	FreeShipping  bool            `gorm:"default:false" json:"free_shipping"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	AverageRating int             `gorm:"default:0" json:"average_rating"` // derived from reviews, rounded up
	NumOfReviews  int             `gorm:"default:0" json:"num_of_reviews"` // derived from reviews
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Reviews    []Review    `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
