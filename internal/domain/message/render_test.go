package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/target/order-notify/internal/domain/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestRender_ConfirmationPickup(t *testing.T) {
	text := Render(model.ConfirmationPayload{
		CustomerName: "Ana",
		StoreName:    "Pizzeria Roma",
		Total:        floatPtr(1500),
		Items:        []model.Item{{Name: "Pizza", Quantity: 1, Price: 1500}},
		DeliveryType: model.DeliveryTypePickup,
	})

	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, "Pizzeria Roma")
	assert.Contains(t, text, "Pizza × 1 — $1500")
	assert.Contains(t, text, "Total: $1500")
	assert.Contains(t, text, "Pickup")
	assert.Contains(t, text, DefaultPreparationWindow)
	assert.NotContains(t, text, "Delivery")
}

func TestRender_ConfirmationDelivery(t *testing.T) {
	text := Render(model.ConfirmationPayload{
		CustomerName:    "Luis",
		StoreName:       "Burger Bar",
		OrderNumber:     "#42",
		Items:           []model.Item{{Name: "Burger", Quantity: 2, Price: 9.5}, {Name: "Fries", Quantity: 1, Price: 3}},
		DeliveryType:    model.DeliveryTypeDelivery,
		DeliveryAddress: "Av. Siempre Viva 742",
		EstimatedTime:   "20 minutes",
	})

	assert.Contains(t, text, "Order #42.")
	assert.Contains(t, text, "Burger × 2 — $9.50")
	assert.Contains(t, text, "Total: $22", "total is computed from items when absent")
	assert.Contains(t, text, "Delivery to: Av. Siempre Viva 742")
	assert.Contains(t, text, "Estimated time: 20 minutes")
	assert.NotContains(t, text, "Pickup")
}

func TestRender_ConfirmationMinimal(t *testing.T) {
	text := Render(model.ConfirmationPayload{})

	assert.Contains(t, text, "Hi there!")
	assert.Contains(t, text, "our store")
	assert.NotContains(t, text, "Total")
	assert.NotContains(t, text, "Your order:")
	assert.Contains(t, text, DefaultPreparationWindow)
}

func TestRender_StatusUpdate(t *testing.T) {
	tests := []struct {
		name     string
		payload  model.StatusUpdatePayload
		contains []string
		excludes []string
	}{
		{
			name:     "preparing",
			payload:  model.StatusUpdatePayload{CustomerName: "Ana", StoreName: "Roma", OrderStatus: model.OrderStatusPreparing},
			contains: []string{"Hi Ana!", "is being prepared"},
		},
		{
			name: "ready for pickup",
			payload: model.StatusUpdatePayload{
				StoreName: "Roma", OrderStatus: model.OrderStatusReady, DeliveryType: model.DeliveryTypePickup,
			},
			contains: []string{"is ready!", "pick it up"},
			excludes: []string{"courier"},
		},
		{
			name: "ready for delivery",
			payload: model.StatusUpdatePayload{
				StoreName: "Roma", OrderStatus: model.OrderStatusReady, DeliveryType: model.DeliveryTypeDelivery,
			},
			contains: []string{"is ready!", "courier"},
			excludes: []string{"pick it up"},
		},
		{
			name:     "delivered",
			payload:  model.StatusUpdatePayload{OrderNumber: "7", OrderStatus: model.OrderStatusDelivered},
			contains: []string{"Your order #7", "has been delivered"},
		},
		{
			name:     "cancelled apologises",
			payload:  model.StatusUpdatePayload{OrderStatus: model.OrderStatusCancelled},
			contains: []string{"has been cancelled", "sorry"},
		},
		{
			name:     "unknown status renders neutral banner",
			payload:  model.StatusUpdatePayload{OrderStatus: model.OrderStatus("weird")},
			contains: []string{"has been updated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := Render(tt.payload)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestRender_DeliveryNotice(t *testing.T) {
	text := Render(model.DeliveryNoticePayload{
		CustomerName:    "Ana",
		StoreName:       "Roma",
		DeliveryAddress: "Calle 1",
	})
	assert.Contains(t, text, "out for delivery")
	assert.Contains(t, text, "Delivering to: Calle 1")
	assert.Contains(t, text, "Estimated arrival: "+DefaultArrivalWindow)

	bare := Render(model.DeliveryNoticePayload{EstimatedTime: "10 minutes"})
	assert.NotContains(t, bare, "Delivering to")
	assert.Contains(t, bare, "Estimated arrival: 10 minutes")
}

func TestRender_NilPayload(t *testing.T) {
	assert.Empty(t, Render(nil))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1500", FormatMoney(1500))
	assert.Equal(t, "$0", FormatMoney(0))
	assert.Equal(t, "$12.50", FormatMoney(12.5))
	assert.Equal(t, "$0.99", FormatMoney(0.99))
}
