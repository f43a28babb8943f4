// Package message renders notification payloads into customer-facing text.
package message

import (
	"math"
	"strconv"
	"strings"

	"github.com/target/order-notify/internal/domain/model"
)

const (
	// DefaultPreparationWindow is shown on confirmations without an estimate.
	DefaultPreparationWindow = "30-45 minutes"
	// DefaultArrivalWindow is shown on delivery notices without an estimate.
	DefaultArrivalWindow = "15-30 minutes"

	fallbackCustomer = "there"
	fallbackStore    = "our store"
)

// Render maps a payload to the final message text. It never fails: missing
// optional fields fall back to defaults or are left out.
func Render(p model.Payload) string {
	switch v := p.(type) {
	case model.ConfirmationPayload:
		return renderConfirmation(v)
	case model.StatusUpdatePayload:
		return renderStatusUpdate(v)
	case model.DeliveryNoticePayload:
		return renderDeliveryNotice(v)
	default:
		// Payload is sealed, so this only covers a nil payload.
		return ""
	}
}

func renderConfirmation(p model.ConfirmationPayload) string {
	var b strings.Builder

	b.WriteString("Hi " + orDefault(p.CustomerName, fallbackCustomer) + "!\n")
	b.WriteString("Thanks for your order at " + orDefault(p.StoreName, fallbackStore) + ".")
	if p.OrderNumber != "" {
		b.WriteString(" Order " + orderRef(p.OrderNumber) + ".")
	}
	b.WriteString("\n")

	if len(p.Items) > 0 {
		b.WriteString("\nYour order:\n")
		for _, item := range p.Items {
			b.WriteString("• " + item.Name + " × " + strconv.Itoa(item.Quantity) + " — " + FormatMoney(item.Price) + "\n")
		}
	}

	if total, ok := confirmationTotal(p); ok {
		b.WriteString("\nTotal: " + FormatMoney(total) + "\n")
	}

	switch p.DeliveryType {
	case model.DeliveryTypePickup:
		b.WriteString("\nPickup: we'll let you know when your order is ready to collect")
		if p.StoreAddress != "" {
			b.WriteString(" at " + p.StoreAddress)
		}
		b.WriteString(".\n")
	case model.DeliveryTypeDelivery:
		b.WriteString("\nDelivery")
		if p.DeliveryAddress != "" {
			b.WriteString(" to: " + p.DeliveryAddress)
		}
		b.WriteString("\n")
	}

	b.WriteString("Estimated time: " + orDefault(p.EstimatedTime, DefaultPreparationWindow))
	return b.String()
}

// confirmationTotal prefers the explicit total and falls back to summing the items.
func confirmationTotal(p model.ConfirmationPayload) (float64, bool) {
	if p.Total != nil {
		return *p.Total, true
	}
	if len(p.Items) == 0 {
		return 0, false
	}
	var sum float64
	for _, item := range p.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum, true
}

func renderStatusUpdate(p model.StatusUpdatePayload) string {
	store := orDefault(p.StoreName, fallbackStore)
	ref := "Your order"
	if p.OrderNumber != "" {
		ref += " " + orderRef(p.OrderNumber)
	}

	var banner, closing string
	switch p.OrderStatus {
	case model.OrderStatusPreparing:
		banner = ref + " at " + store + " is being prepared."
		closing = "We'll message you again as soon as it's ready."
	case model.OrderStatusReady:
		banner = ref + " at " + store + " is ready!"
		if p.DeliveryType == model.DeliveryTypeDelivery {
			closing = "It will be handed to the courier shortly."
		} else {
			closing = "You can come pick it up whenever you like."
		}
	case model.OrderStatusDelivered:
		banner = ref + " from " + store + " has been delivered."
		closing = "Enjoy! Thanks for ordering with us."
	case model.OrderStatusCancelled:
		banner = ref + " at " + store + " has been cancelled."
		closing = "We're sorry for the inconvenience. Please contact the store if you have any questions."
	default:
		banner = ref + " at " + store + " has been updated."
	}

	text := "Hi " + orDefault(p.CustomerName, fallbackCustomer) + "!\n" + banner
	if closing != "" {
		text += "\n" + closing
	}
	return text
}

func renderDeliveryNotice(p model.DeliveryNoticePayload) string {
	var b strings.Builder

	b.WriteString("Hi " + orDefault(p.CustomerName, fallbackCustomer) + "!\n")
	b.WriteString("Your order")
	if p.OrderNumber != "" {
		b.WriteString(" " + orderRef(p.OrderNumber))
	}
	b.WriteString(" from " + orDefault(p.StoreName, fallbackStore) + " is out for delivery.\n")
	if p.DeliveryAddress != "" {
		b.WriteString("Delivering to: " + p.DeliveryAddress + "\n")
	}
	b.WriteString("Estimated arrival: " + orDefault(p.EstimatedTime, DefaultArrivalWindow))
	return b.String()
}

// FormatMoney renders whole amounts without decimals and everything else with two.
func FormatMoney(amount float64) string {
	if amount == math.Trunc(amount) && math.Abs(amount) < 1e15 {
		return "$" + strconv.FormatInt(int64(amount), 10)
	}
	return "$" + strconv.FormatFloat(amount, 'f', 2, 64)
}

func orderRef(number string) string {
	return "#" + strings.TrimPrefix(number, "#")
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
