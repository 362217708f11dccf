package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Cancellable reports whether a buyer may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

type Product struct {
	ID          uint      `gorm:"primaryKey"                                json:"id"`
	Name        string    `gorm:"not null;index"                            json:"name"`
	Platforms   []string  `gorm:"column:platform;type:text;serializer:json" json:"platforms"`
	Price       float64   `gorm:"not null;check:price >= 0"                 json:"price"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0"       json:"stock"`
	Description string    `gorm:"type:text"                                 json:"description"`
	ImageRef    string    `gorm:"column:image_url"                          json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// DiscountPct is the best discount active when the row was read. Not stored.
	DiscountPct float64 `gorm:"-" json:"discount_pct,omitempty"`
}

// SalePrice is what a buyer pays for one unit right now.
func (p Product) SalePrice() float64 {
	return DiscountedPrice(p.Price, p.DiscountPct).InexactFloat64()
}

// DiscountedPrice takes pct percent off price and rounds to cents.
func DiscountedPrice(price, pct float64) decimal.Decimal {
	d := decimal.NewFromFloat(price)
	if pct <= 0 {
		return d.Round(2)
	}
	hundred := decimal.NewFromInt(100)
	return d.Mul(hundred.Sub(decimal.NewFromFloat(pct))).Div(hundred).Round(2)
}

func (p Product) HasPlatform(tag string) bool {
	for _, pl := range p.Platforms {
		if pl == tag {
			return true
		}
	}
	return false
}

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username   string    `gorm:"index"                          json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type CartItem struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"       json:"user_id"`
	ProductID uint      `gorm:"primaryKey;autoIncrement:false"       json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0"          json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime"                       json:"added_at"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// BuyerSnapshot is frozen into the order at commit time.
type BuyerSnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email,omitempty"`
}

type Order struct {
	ID        uint          `gorm:"primaryKey"                                     json:"id"`
	UserID    int64         `gorm:"not null;index"                                 json:"user_id"`
	Status    OrderStatus   `gorm:"type:varchar(16);not null;index"                json:"status"`
	Total     float64       `gorm:"not null"                                       json:"total"`
	Buyer     BuyerSnapshot `gorm:"column:buyer_snapshot;type:text;serializer:json" json:"buyer"`
	CreatedAt time.Time     `gorm:"index"                                          json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Items     []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem copies name and price so later catalog edits never change history.
type OrderItem struct {
	OrderID     uint    `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	ProductID   uint    `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	ProductName string  `gorm:"not null"                       json:"product_name"`
	Quantity    int     `gorm:"not null;check:quantity > 0"    json:"quantity"`
	UnitPrice   float64 `gorm:"not null"                       json:"unit_price"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey"             json:"id"`
	Name        string    `gorm:"not null;uniqueIndex"   json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Discount struct {
	ID         uint      `gorm:"primaryKey"                                  json:"id"`
	ProductID  uint      `gorm:"not null;index"                              json:"product_id"`
	Percentage float64   `gorm:"not null;check:percentage > 0 AND percentage <= 100" json:"percentage"`
	StartsAt   time.Time `gorm:"not null"                                    json:"starts_at"`
	EndsAt     time.Time `gorm:"not null"                                    json:"ends_at"`
	CreatedAt  time.Time `json:"created_at"`
	Product    Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d Discount) ActiveAt(t time.Time) bool {
	return !t.Before(d.StartsAt) && !t.After(d.EndsAt)
}

type StockAlert struct {
	ProductID uint      `gorm:"primaryKey;autoIncrement:false"             json:"product_id"`
	Threshold int       `gorm:"not null;default:5;check:threshold >= 0"    json:"threshold"`
	UpdatedAt time.Time `json:"updated_at"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

type AdminUser struct {
	ID           uint       `gorm:"primaryKey"           json:"id"`
	Username     string     `gorm:"not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"not null"             json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type AdminLog struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	AdminID   uint      `gorm:"index"          json:"admin_id"`
	Username  string    `json:"username"`
	Action    string    `gorm:"not null"       json:"action"`
	Details   string    `gorm:"type:text"      json:"details"`
	CreatedAt time.Time `gorm:"index"          json:"created_at"`
}

type Broadcast struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	AdminID    uint       `json:"admin_id"`
	Recipients int        `json:"recipients"`
	Delivered  int        `json:"delivered"`
	CreatedAt  time.Time  `json:"created_at"`
	SentAt     *time.Time `json:"sent_at"`
}

func All() []any {
	return []any{
		&Product{},
		&User{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Category{},
		&Discount{},
		&StockAlert{},
		&AdminUser{},
		&AdminLog{},
		&Broadcast{},
	}
}
