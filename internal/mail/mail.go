// Package mail sends order confirmations.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"dutyfree/internal/domain"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sender delivers one plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SendGrid struct {
	apiKey   string
	fromAddr string
	fromName string
	logger   *zap.Logger
}

func NewSendGrid(apiKey, fromAddr, fromName string, logger *zap.Logger) *SendGrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGrid{apiKey: apiKey, fromAddr: fromAddr, fromName: fromName, logger: logger}
}

func (s *SendGrid) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return errors.New("recipient required")
	}
	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.fromName, s.fromAddr),
		subject,
		sgmail.NewEmail("", to),
		body,
		"<pre>"+html.EscapeString(body)+"</pre>",
	)
	resp, err := sendgrid.NewSendClient(s.apiKey).SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected message", zap.Int("status", resp.StatusCode), zap.String("body", resp.Body))
		return fmt.Errorf("sendgrid send failed: status=%d", resp.StatusCode)
	}
	s.logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Nop logs messages instead of sending them. Used when no API key is configured.
type Nop struct {
	Logger *zap.Logger
}

func (n Nop) Send(_ context.Context, to, subject, _ string) error {
	if n.Logger != nil {
		n.Logger.Info("mail disabled, skipping", zap.String("to", to), zap.String("subject", subject))
	}
	return nil
}

// OrderConfirmation renders the subject and body for a placed order.
func OrderConfirmation(o domain.Order) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you %s %s, your order %s has been received.\n\n", o.OtherNames, o.Surname, o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s  %s\n", it.Quantity, it.ProductName, it.ProductPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\nTax: %s\nTotal: %s\n", o.Subtotal.StringFixed(2), o.Tax.StringFixed(2), o.Total.StringFixed(2))
	fmt.Fprintf(&b, "\nCollection on arrival: flight %s on %s at %s.\n", o.ArrivalFlightNumber, o.ArrivalDate, o.ArrivalTime)
	fmt.Fprintf(&b, "Please bring passport %s.\n", o.PassportNumber)
	return "Your duty-free order " + shortID(o.ID), b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
