package transport

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Platforms   []string `json:"platforms"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
}

// PatchProductRequest leaves stock out; stock moves through StockRequest.
type PatchProductRequest struct {
	Name        *string   `json:"name"`
	Platforms   *[]string `json:"platforms"`
	Price       *float64  `json:"price"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
}

// StockRequest carries either a signed delta or an absolute value.
type StockRequest struct {
	Delta *int `json:"delta"`
	Stock *int `json:"stock"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DiscountRequest struct {
	ProductID  uint      `json:"product_id"`
	Percentage float64   `json:"percentage"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

type AlertRequest struct {
	Threshold int `json:"threshold"`
}

type BroadcastRequest struct {
	Message string `json:"message"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewMeta(page, offset, limit int, total int64) Meta {
	return Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

type ListResponse[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}
