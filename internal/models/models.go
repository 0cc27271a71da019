package models

import (
	"time"
)

const (
	RoleAdmin        = "admin"
	RoleOrderManager = "order_manager"
	RoleCustomer     = "customer"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses is the fixed set accepted by the status endpoint.
var OrderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"      json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:customer" json:"role"`
	Blocked      bool      `gorm:"default:false"             json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"uniqueIndex;not null"     json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	Image       string    `json:"image"`
	InStock     bool      `gorm:"default:true"              json:"in_stock"`
	Rating      float64   `json:"rating"`
	ReviewCount uint      `json:"review_count"`
	CategoryID  uint      `gorm:"index;not null"            json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CartItem holds at most one row per (user, product); duplicate adds
// merge into the existing row instead of inserting a second one.
type CartItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  uint     `gorm:"not null;check:quantity > 0"                json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"                       json:"product,omitempty"`
}

// Order keeps a nullable UserID: deleting an account detaches its
// orders instead of destroying purchase history.
type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          *uint       `gorm:"index"                    json:"user_id"`
	Status          string      `gorm:"not null;default:pending" json:"status"`
	TotalPrice      float64     `gorm:"not null"                 json:"total_price"`
	ShippingFee     float64     `json:"shipping_fee"`
	DeliveryAddress string      `json:"delivery_address"`
	BillingInfo     string      `json:"billing_info"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"       json:"order_items,omitempty"`
	Invoice         *Invoice    `gorm:"foreignKey:OrderID"       json:"invoice,omitempty"`
}

// PriceAtOrder is written once at checkout and never updated, so past
// orders are insulated from later product price changes.
type OrderItem struct {
	ID           uint     `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID      uint     `gorm:"index;not null"              json:"order_id"`
	ProductID    uint     `gorm:"not null"                    json:"product_id"`
	Quantity     uint     `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtOrder float64  `gorm:"not null"                    json:"price_at_order"`
	Product      *Product `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
}

type Invoice struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber string    `gorm:"uniqueIndex;not null"     json:"invoice_number"`
	OrderID       uint      `gorm:"uniqueIndex;not null"     json:"order_id"`
	IssuedAt      time.Time `json:"issued_at"`
	PDFURL        string    `json:"pdf_url"`
}

// TokenBlocklist rows are append-only; a row with a token's jti means
// that token is revoked regardless of signature validity.
type TokenBlocklist struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"     json:"jti"`
	CreatedAt time.Time `json:"created_at"`
}
