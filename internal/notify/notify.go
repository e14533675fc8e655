// Package notify sends transactional mail in response to shop events. It
// subscribes to the event bus and never blocks the publisher: messages are
// dispatched on a worker pool and failures are logged, not propagated.
package notify

import (
	"fmt"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/config"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/order"
	"github.com/pawshop/pawshop/pkg/common"
)

// EnabledFunc gates dispatch at send time so the admin toggle applies without
// a restart.
type EnabledFunc func() bool

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer listens for order events and emails confirmations.
type Mailer struct {
	cfg     config.SmtpConfig
	db      *gorm.DB
	pool    *ants.Pool
	dialer  sender
	enabled EnabledFunc
}

// NewMailer wires the mailer onto the bus. When SMTP is disabled in the
// config the mailer is inert but still safe to construct.
func NewMailer(cfg config.SmtpConfig, db *gorm.DB, bus EventBus.Bus, enabled EnabledFunc) (*Mailer, error) {
	pool, err := ants.NewPool(4, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	m := &Mailer{
		cfg:     cfg,
		db:      db,
		pool:    pool,
		enabled: enabled,
	}
	if cfg.Enabled {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	if bus != nil {
		if err := bus.SubscribeAsync(order.TopicCreated, m.onOrderCreated, false); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Mailer) Close() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// onOrderCreated queues a confirmation mail for the order. Guest orders have
// no email on file and are skipped.
func (m *Mailer) onOrderCreated(o domain.Order) {
	if m.dialer == nil || (m.enabled != nil && !m.enabled()) {
		return
	}
	if o.IsGuest() {
		return
	}

	var user domain.ShopUser
	if err := m.db.Where("id = ?", o.UserID).First(&user).Error; err != nil {
		zap.L().Warn("order mail skipped, user lookup failed",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
		return
	}

	err := m.pool.Submit(func() {
		if err := m.send(user, o); err != nil {
			zap.L().Warn("order mail failed",
				zap.String("order_number", o.OrderNumber),
				zap.String("to", user.Email),
				zap.Error(err))
			return
		}
		zap.L().Info("order mail sent",
			zap.String("order_number", o.OrderNumber),
			zap.String("to", user.Email))
	})
	if err != nil {
		zap.L().Warn("order mail dropped, pool full", zap.String("order_number", o.OrderNumber))
	}
}

func (m *Mailer) send(user domain.ShopUser, o domain.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Order %s confirmed", o.OrderNumber))
	msg.SetBody("text/plain", renderOrderBody(user, o))
	return m.dialer.DialAndSend(msg)
}

func renderOrderBody(user domain.ShopUser, o domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Name)
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", o.OrderNumber)
	for _, item := range o.Items {
		fmt.Fprintf(&b, "  %dx %s  %s\n", item.Quantity, item.Product.Name,
			common.FormatPrice(item.Product.Price*float64(item.Quantity)))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", common.FormatPrice(o.Subtotal))
	fmt.Fprintf(&b, "Shipping: %s\n", common.FormatPrice(o.Shipping))
	if o.Tax > 0 {
		fmt.Fprintf(&b, "Tax: %s\n", common.FormatPrice(o.Tax))
	}
	fmt.Fprintf(&b, "Total: %s\n\n", common.FormatPrice(o.Total))
	fmt.Fprintf(&b, "Payment: %s\n", o.PaymentMethod.Label())
	fmt.Fprintf(&b, "Status: %s\n\n", o.Status.Label())
	fmt.Fprintf(&b, "Shipping to:\n%s\n%s, %s %s\n",
		o.ShippingAddress.Recipient, o.ShippingAddress.Street,
		o.ShippingAddress.City, o.ShippingAddress.PostalCode)
	return b.String()
}
