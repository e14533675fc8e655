package domain

import "time"

// Address is a shipping destination. A copy is embedded into each order at
// creation time and never references back to the user profile.
type Address struct {
	ID         int64  `json:"id,string"`
	Label      string `json:"label"`
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default"`
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentEWallet      PaymentMethod = "e-wallet"
	PaymentCOD          PaymentMethod = "cod"
)

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentBankTransfer: "Bank Transfer",
	PaymentEWallet:      "E-Wallet",
	PaymentCOD:          "Cash on Delivery",
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodLabels[m]
	return ok
}

func (m PaymentMethod) Label() string {
	return paymentMethodLabels[m]
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// StatusClass buckets statuses for order-history views.
type StatusClass string

const (
	StatusClassActive    StatusClass = "active"
	StatusClassCompleted StatusClass = "completed"
	StatusClassCancelled StatusClass = "cancelled"
)

type statusMeta struct {
	Label string
	Color string
	Class StatusClass
}

var orderStatusMeta = map[OrderStatus]statusMeta{
	OrderPending:    {"Pending Payment", "bg-yellow-100 text-yellow-700", StatusClassActive},
	OrderConfirmed:  {"Payment Confirmed", "bg-blue-100 text-blue-700", StatusClassActive},
	OrderProcessing: {"Processing", "bg-purple-100 text-purple-700", StatusClassActive},
	OrderShipped:    {"Shipped", "bg-indigo-100 text-indigo-700", StatusClassActive},
	OrderDelivered:  {"Delivered", "bg-green-100 text-green-700", StatusClassCompleted},
	OrderCancelled:  {"Cancelled", "bg-red-100 text-red-700", StatusClassCancelled},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusMeta[s]
	return ok
}

func (s OrderStatus) Label() string {
	return orderStatusMeta[s].Label
}

func (s OrderStatus) Color() string {
	return orderStatusMeta[s].Color
}

func (s OrderStatus) Class() StatusClass {
	return orderStatusMeta[s].Class
}

// Terminal reports whether no further transitions are modeled from s. The
// data layer does not reject transitions out of terminal states; that guard
// is an administrative-tool concern.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order is an immutable snapshot of a placed cart. Only Status and UpdatedAt
// change after creation.
type Order struct {
	ID              int64         `json:"id,string"`
	OrderNumber     string        `json:"order_number"`
	UserID          int64         `json:"user_id,string"`
	Items           []CartItem    `json:"items"`
	ShippingAddress Address       `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Status          OrderStatus   `json:"status"`
	Subtotal        float64       `json:"subtotal"`
	Shipping        float64       `json:"shipping"`
	Tax             float64       `json:"tax"`
	Total           float64       `json:"total"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsGuest reports whether the order was placed without a signed-in user.
func (o Order) IsGuest() bool {
	return o.UserID == 0
}
