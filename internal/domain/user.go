package domain

import "time"

// ShopUser is a storefront account. Addresses are stored as a JSON column;
// the order pipeline only ever copies them by value.
type ShopUser struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Password  string    `json:"-" form:"-"`
	Name      string    `json:"name" form:"name"`
	Phone     string    `json:"phone" form:"phone"`
	Avatar    string    `gorm:"size:1024" json:"avatar" form:"avatar"`
	Addresses []Address `gorm:"serializer:json" json:"addresses"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShopUser) TableName() string {
	return "shop_user"
}

// DefaultAddress returns the default shipping address, or nil when the user
// has none.
func (u *ShopUser) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	if len(u.Addresses) > 0 {
		return &u.Addresses[0]
	}
	return nil
}
