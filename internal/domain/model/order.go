package model

// OrderStatusChange is raised by the order workflow whenever a store moves an order.
type OrderStatusChange struct {
	OrderID         string       `json:"order_id"`
	OrderNumber     string       `json:"order_number,omitempty"`
	StoreID         string       `json:"store_id"`
	StoreName       string       `json:"store_name"`
	Recipient       string       `json:"recipient"`
	CustomerName    string       `json:"customer_name"`
	Status          OrderStatus  `json:"status"`
	DeliveryType    DeliveryType `json:"delivery_type"`
	DeliveryAddress string       `json:"delivery_address,omitempty"`
	EstimatedTime   string       `json:"estimated_time,omitempty"`
}
