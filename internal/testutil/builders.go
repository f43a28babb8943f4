package testutil

import (
	"github.com/target/order-notify/internal/domain/model"
)

// EnqueueRequestBuilder builds EnqueueRequest values for tests.
type EnqueueRequestBuilder struct {
	req model.EnqueueRequest
}

// NewEnqueueRequest starts from a valid confirmation request for store S1.
func NewEnqueueRequest() *EnqueueRequestBuilder {
	return &EnqueueRequestBuilder{req: model.EnqueueRequest{
		Recipient: "+5491111111111",
		StoreID:   "S1",
		OrderID:   "O1",
		Payload:   model.ConfirmationPayload{CustomerName: "Ana", StoreName: "Pizzeria Uno"},
	}}
}

// WithStore sets the store id.
func (b *EnqueueRequestBuilder) WithStore(storeID string) *EnqueueRequestBuilder {
	b.req.StoreID = storeID
	return b
}

// WithOrder sets the order id.
func (b *EnqueueRequestBuilder) WithOrder(orderID string) *EnqueueRequestBuilder {
	b.req.OrderID = orderID
	return b
}

// WithRecipient sets the recipient phone number.
func (b *EnqueueRequestBuilder) WithRecipient(recipient string) *EnqueueRequestBuilder {
	b.req.Recipient = recipient
	return b
}

// WithPayload sets the payload, and with it the job kind.
func (b *EnqueueRequestBuilder) WithPayload(p model.Payload) *EnqueueRequestBuilder {
	b.req.Payload = p
	return b
}

// WithMaxAttempts sets the attempt budget.
func (b *EnqueueRequestBuilder) WithMaxAttempts(n int) *EnqueueRequestBuilder {
	b.req.MaxAttempts = n
	return b
}

// Build returns a copy of the request.
func (b *EnqueueRequestBuilder) Build() *model.EnqueueRequest {
	out := b.req
	return &out
}

// NewStoreChannelRequest returns a valid upsert request for storeID.
func NewStoreChannelRequest(storeID string) *model.UpsertStoreChannelRequest {
	return &model.UpsertStoreChannelRequest{
		StoreID:       storeID,
		PhoneNumberID: "1098765432",
		AccessToken:   "EAAG-test-token-" + storeID,
		Enabled:       true,
	}
}
