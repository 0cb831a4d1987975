package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderCollected  OrderStatus = "collected"
)

var orderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderProcessing, OrderCompleted, OrderCancelled, OrderCollected,
}

// ParseOrderStatus accepts any casing of a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CustomerCancellable reports whether the customer may still cancel.
func (s OrderStatus) CustomerCancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// Traveller holds the collection details captured at checkout.
type Traveller struct {
	PassportNumber      string `json:"passport_number" validate:"required"`
	ArrivalFlightNumber string `json:"arrival_flight_number" validate:"required"`
	Surname             string `json:"surname" validate:"required"`
	OtherNames          string `json:"other_names" validate:"required"`
	ContactNumber       string `json:"contact_number" validate:"required"`
	ArrivalDate         string `json:"arrival_date" validate:"required"`
	ArrivalTime         string `json:"arrival_time" validate:"required"`
}

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id,omitempty"`
	CustomerEmail string          `json:"customer_email"`
	GuestEmail    string          `json:"guest_email,omitempty"`
	Traveller
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	Items     []OrderItem     `json:"order_items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem is a line of an order with a copy of the product at purchase time.
type OrderItem struct {
	ID                  string          `json:"id"`
	OrderID             string          `json:"order_id"`
	ProductID           string          `json:"product_id"`
	Quantity            int             `json:"quantity"`
	ProductName         string          `json:"product_name"`
	ProductCategory     string          `json:"product_category"`
	ProductDescription  string          `json:"product_description"`
	ProductImageURL     string          `json:"product_image_url"`
	ProductInStock      bool            `json:"product_in_stock"`
	ProductPrice        decimal.Decimal `json:"product_price"`
	ProductRating       *float64        `json:"product_rating,omitempty"`
	ProductReviewsCount *int            `json:"product_reviews_count,omitempty"`
}
