// Package order places duty-free orders from a cart and manages them afterwards.
package order

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dutyfree/internal/domain"
	cartsvc "dutyfree/internal/service/cart"
	mailer "dutyfree/internal/mail"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCart is returned by Place when there is nothing to order.
	ErrEmptyCart = domain.Validation("cart is empty")
	// ErrNotCancellable is returned when the order has moved past confirmation.
	ErrNotCancellable = domain.Validation("order can no longer be cancelled")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = domain.Validation("invalid order status")
)

var (
	// UnitPrice is the flat price charged per item until the catalog carries prices.
	UnitPrice = decimal.NewFromInt(100)
	// TaxRate applies to the subtotal.
	TaxRate  = decimal.RequireFromString("0.15")
	Shipping = decimal.Zero
)

type orderRepo interface {
	Place(ctx context.Context, o domain.Order, clearCartOf string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListForCustomer(ctx context.Context, userID, email string) ([]domain.Order, error)
	ListAll(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, from ...domain.OrderStatus) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
}

type carts interface {
	For(id domain.Identity, guestID string) cartsvc.Store
}

type Service struct {
	repo   orderRepo
	carts  carts
	sender mailer.Sender
	logger *zap.Logger
}

func New(repo orderRepo, carts carts, sender mailer.Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = mailer.Nop{Logger: logger}
	}
	return &Service{repo: repo, carts: carts, sender: sender, logger: logger.Named("order")}
}

// CheckoutInput is the form submitted at checkout.
type CheckoutInput struct {
	Email string `json:"email" validate:"required,email"`
	domain.Traveller
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (in *CheckoutInput) trim() {
	for _, f := range []*string{
		&in.Email,
		&in.PassportNumber,
		&in.ArrivalFlightNumber,
		&in.Surname,
		&in.OtherNames,
		&in.ContactNumber,
		&in.ArrivalDate,
		&in.ArrivalTime,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// validate reports the first failing field in declaration order.
func (in CheckoutInput) validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate checkout: %w", err)
	}
	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return domain.Validation(fe.Field() + " required")
	}
	return domain.Validation(fe.Field() + " is invalid")
}

// Price computes subtotal, tax and total for the cart lines.
func Price(lines []domain.CartLine) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax = subtotal.Mul(TaxRate).Round(2)
	total = subtotal.Add(Shipping).Add(tax)
	return subtotal, tax, total
}

// Place turns the caller's cart into a pending order, empties the cart and
// sends a confirmation mail. Mail failures do not fail the order.
func (s *Service) Place(ctx context.Context, id domain.Identity, guestID string, in CheckoutInput) (*domain.Order, error) {
	in.trim()
	if err := in.validate(); err != nil {
		return nil, err
	}

	store := s.carts.For(id, guestID)
	lines, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	o := domain.Order{
		CustomerEmail: in.Email,
		Traveller:     in.Traveller,
		Status:        domain.OrderPending,
	}
	o.Subtotal, o.Tax, o.Total = Price(lines)
	if id.Authenticated() {
		o.UserID = id.UserID
	} else {
		o.GuestEmail = in.Email
	}
	for _, l := range lines {
		item := domain.OrderItem{
			ProductID:           l.Product.ID,
			Quantity:            l.Quantity,
			ProductName:         l.Product.Name,
			ProductCategory:     l.Product.Category,
			ProductDescription:  l.Product.Description,
			ProductImageURL:     l.Product.ImageURL,
			ProductInStock:      l.Product.InStock == nil || *l.Product.InStock,
			ProductPrice:        UnitPrice,
			ProductRating:       l.Product.Rating,
			ProductReviewsCount: l.Product.ReviewsCount,
		}
		o.Items = append(o.Items, item)
	}

	placed, err := s.repo.Place(ctx, o, o.UserID)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := store.Clear(ctx); err != nil {
		s.logger.Warn("clear cart after checkout failed", zap.String("order_id", placed.ID), zap.Error(err))
	}

	subject, body := mailer.OrderConfirmation(*placed)
	if err := s.sender.Send(ctx, placed.CustomerEmail, subject, body); err != nil {
		s.logger.Error("order confirmation mail failed", zap.String("order_id", placed.ID), zap.Error(err))
	}
	return placed, nil
}

// Track looks up an order by id for a caller who knows its email.
func (s *Service) Track(ctx context.Context, orderID, email string) (*domain.Order, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Validation("email required")
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(o.CustomerEmail, email) && !strings.EqualFold(o.GuestEmail, email) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ListMine returns the caller's orders, including ones placed as a guest
// under the same email.
func (s *Service) ListMine(ctx context.Context, id domain.Identity) ([]domain.Order, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListForCustomer(ctx, id.UserID, id.Email)
}

func (s *Service) owns(id domain.Identity, o *domain.Order) bool {
	if o.UserID != "" {
		return o.UserID == id.UserID
	}
	return id.Email != "" && strings.EqualFold(o.GuestEmail, id.Email)
}

// Cancel cancels one of the caller's orders while it is pending or confirmed.
func (s *Service) Cancel(ctx context.Context, id domain.Identity, orderID string) (*domain.Order, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.owns(id, o) {
		return nil, domain.ErrNotFound
	}
	if !o.Status.CustomerCancellable() {
		return nil, ErrNotCancellable
	}
	err = s.repo.UpdateStatus(ctx, orderID, domain.OrderCancelled, domain.OrderPending, domain.OrderConfirmed)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNotCancellable
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled by customer", zap.String("order_id", orderID))
	o.Status = domain.OrderCancelled
	return o, nil
}

// AdminList returns all orders, optionally with one status.
func (s *Service) AdminList(ctx context.Context, status string) ([]domain.Order, error) {
	if strings.TrimSpace(status) == "" || strings.EqualFold(status, "all") {
		return s.repo.ListAll(ctx, "")
	}
	st, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListAll(ctx, st)
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) error {
	st, ok := domain.ParseOrderStatus(status)
	if !ok {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, orderID, st)
}

// UpdateTotal overrides the order total. raw must be a non-negative number.
func (s *Service) UpdateTotal(ctx context.Context, orderID, raw string) (decimal.Decimal, error) {
	total, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || total.IsNegative() {
		return decimal.Zero, domain.Validation("total must be a non-negative number")
	}
	total = total.Round(2)
	if err := s.repo.UpdateTotal(ctx, orderID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
