package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus is the order lifecycle state reported by the store.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Valid returns true if the OrderStatus is known.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DeliveryType is how the customer receives the order.
type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// Valid returns true for pickup and delivery. An empty value is not valid.
func (d DeliveryType) Valid() bool {
	return d == DeliveryTypePickup || d == DeliveryTypeDelivery
}

// Item is a single order line.
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Payload is the kind-specific data needed to render a message.
// Implementations are limited to the types in this package.
type Payload interface {
	Kind() Kind
	sealed()
}

// ConfirmationPayload renders the order confirmation message.
type ConfirmationPayload struct {
	CustomerName    string       `json:"customer_name"`
	StoreName       string       `json:"store_name"`
	OrderNumber     string       `json:"order_number,omitempty"`
	Items           []Item       `json:"items,omitempty"`
	Total           *float64     `json:"total,omitempty"`
	DeliveryType    DeliveryType `json:"delivery_type,omitempty"`
	DeliveryAddress string       `json:"delivery_address,omitempty"`
	StoreAddress    string       `json:"store_address,omitempty"`
	EstimatedTime   string       `json:"estimated_time,omitempty"`
}

// StatusUpdatePayload renders an order status banner.
type StatusUpdatePayload struct {
	CustomerName string       `json:"customer_name"`
	StoreName    string       `json:"store_name"`
	OrderNumber  string       `json:"order_number,omitempty"`
	OrderStatus  OrderStatus  `json:"order_status"`
	DeliveryType DeliveryType `json:"delivery_type,omitempty"`
}

// DeliveryNoticePayload renders the out-for-delivery message.
type DeliveryNoticePayload struct {
	CustomerName    string `json:"customer_name"`
	StoreName       string `json:"store_name"`
	OrderNumber     string `json:"order_number,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	EstimatedTime   string `json:"estimated_time,omitempty"`
}

func (ConfirmationPayload) Kind() Kind   { return KindConfirmation }
func (StatusUpdatePayload) Kind() Kind   { return KindStatusUpdate }
func (DeliveryNoticePayload) Kind() Kind { return KindDeliveryNotice }

func (ConfirmationPayload) sealed()   {}
func (StatusUpdatePayload) sealed()   {}
func (DeliveryNoticePayload) sealed() {}

// ClonePayload returns a copy of p that shares no slices or pointers with it.
//
//nolint:ireturn // Payload is a closed sum type.
func ClonePayload(p Payload) Payload {
	switch v := p.(type) {
	case ConfirmationPayload:
		return v.clone()
	case *ConfirmationPayload:
		if v == nil {
			return v
		}
		c := v.clone()
		return &c
	case *StatusUpdatePayload:
		if v == nil {
			return v
		}
		c := *v
		return &c
	case *DeliveryNoticePayload:
		if v == nil {
			return v
		}
		c := *v
		return &c
	default:
		return p
	}
}

func (c ConfirmationPayload) clone() ConfirmationPayload {
	if c.Items != nil {
		c.Items = append([]Item(nil), c.Items...)
	}
	if c.Total != nil {
		t := *c.Total
		c.Total = &t
	}
	return c
}

// DecodePayload decodes raw JSON into the payload type registered for kind.
//
//nolint:ireturn // Payload is a closed sum type.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}

	var (
		p   Payload
		err error
	)
	switch kind {
	case KindConfirmation:
		var v ConfirmationPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindStatusUpdate:
		var v StatusUpdatePayload
		err = json.Unmarshal(raw, &v)
		p = v
	case KindDeliveryNotice:
		var v DeliveryNoticePayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return p, nil
}
