package domain

import "time"

// Product is a catalog item. The cart and order pipeline treats it as
// read-only input; copies embedded in carts and orders are value snapshots.
type Product struct {
	ID            int64    `gorm:"primaryKey" json:"id,string" form:"id"`
	Name          string   `gorm:"index" json:"name" form:"name"`
	Slug          string   `gorm:"uniqueIndex;size:255" json:"slug" form:"slug"`
	Description   string   `gorm:"size:2048" json:"description" form:"description"`
	Price         float64  `json:"price" form:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty" form:"original_price"`
	CategoryID    int64    `gorm:"index" json:"category_id,string" form:"category_id"`
	Image         string   `gorm:"size:1024" json:"image" form:"image"`
	Stock         int      `json:"stock" form:"stock"`
	Rating        float64  `json:"rating" form:"rating"`
	ReviewCount   int      `json:"review_count" form:"review_count"`
	Tags          string   `gorm:"size:512" json:"tags" form:"tags"`
	IsFeatured    bool     `json:"is_featured" form:"is_featured"`
	IsNew         bool     `json:"is_new" form:"is_new"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "shop_product"
}

// Clone returns a value copy with no shared pointers.
func (p Product) Clone() Product {
	cp := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		cp.OriginalPrice = &v
	}
	return cp
}

type Category struct {
	ID           int64  `gorm:"primaryKey" json:"id,string" form:"id"`
	Name         string `gorm:"index" json:"name" form:"name"`
	Slug         string `gorm:"uniqueIndex;size:255" json:"slug" form:"slug"`
	Description  string `gorm:"size:1024" json:"description" form:"description"`
	Image        string `gorm:"size:1024" json:"image" form:"image"`
	Icon         string `gorm:"size:64" json:"icon" form:"icon"`
	ProductCount int    `json:"product_count" form:"product_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "shop_category"
}
