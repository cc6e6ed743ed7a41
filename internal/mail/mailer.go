// Package mail sends customer-facing notifications. Delivery is
// best-effort: the order pipeline never fails because a message could
// not be sent.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"gearhub/internal/model"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
)

// Sender dispatches order notifications.
type Sender interface {
	// SendOrderConfirmation emails the customer a summary of the placed
	// order.
	SendOrderConfirmation(ctx context.Context, order *model.Order, items []model.OrderLineItem) error
}

// SMTPConfig holds mail transport configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Addr returns the transport's host:port address.
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// smtpSender implements Sender over plain SMTP.
type smtpSender struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTP-backed notification sender.
func NewSMTPSender(cfg SMTPConfig, logger zerolog.Logger) Sender {
	return &smtpSender{
		cfg:    cfg,
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

// SendOrderConfirmation emails the customer a plain-text order summary.
func (s *smtpSender) SendOrderConfirmation(ctx context.Context, order *model.Order, items []model.OrderLineItem) error {
	msg := email.NewEmail()
	msg.From = s.cfg.From
	msg.To = []string{order.Contact.Email}
	msg.Subject = fmt.Sprintf("Order Confirmation #%s", order.OrderNumber)
	msg.Text = []byte(renderOrderSummary(order, items))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := msg.Send(s.cfg.Addr(), auth); err != nil {
		s.logger.Error().Err(err).
			Str("order_number", order.OrderNumber).
			Str("recipient", order.Contact.Email).
			Msg("failed to send order confirmation")
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("recipient", order.Contact.Email).
		Msg("order confirmation sent")

	return nil
}

// renderOrderSummary builds the plain-text body of the confirmation.
func renderOrderSummary(order *model.Order, items []model.OrderLineItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", order.Contact.FullName())
	fmt.Fprintf(&b, "Thank you for your order #%s.\n\n", order.OrderNumber)

	b.WriteString("Items:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  %s (%s) x%d  %s\n",
			item.ProductName, item.ProductSKU, item.Quantity, item.TotalPrice.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nSubtotal:  %s\n", order.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Shipping:  %s (%s)\n", order.ShippingCost.StringFixed(2), order.ShippingMethodName)
	fmt.Fprintf(&b, "Tax:       %s\n", order.TaxAmount.StringFixed(2))
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount: -%s\n", order.DiscountAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total:     %s\n\n", order.TotalAmount.StringFixed(2))

	addr := order.ShippingAddress
	b.WriteString("Shipping to:\n")
	fmt.Fprintf(&b, "  %s\n", addr.Street)
	if addr.Apartment != "" {
		fmt.Fprintf(&b, "  %s\n", addr.Apartment)
	}
	fmt.Fprintf(&b, "  %s, %s %s\n  %s\n", addr.City, addr.State, addr.PostalCode, addr.Country)

	return b.String()
}

// NopSender discards every notification. Used when SMTP is not
// configured.
type NopSender struct{}

func (NopSender) SendOrderConfirmation(context.Context, *model.Order, []model.OrderLineItem) error {
	return nil
}
