package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/domain/model"
	apperrors "github.com/target/order-notify/internal/errors"
)

// recipientPattern accepts E.164 numbers with or without the leading plus.
var recipientPattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// Destination identifies who receives a notification and which order it is about.
type Destination struct {
	Recipient   string
	StoreID     string
	OrderID     string
	MaxAttempts int
}

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Queue  core.Enqueuer // Required: job queue
	Logger *slog.Logger  // Optional: structured logger
}

// NotificationService builds typed notification jobs for order events.
type NotificationService struct {
	queue  core.Enqueuer
	logger *slog.Logger
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(opts NotificationServiceOptions) (*NotificationService, error) {
	if opts.Queue == nil {
		return nil, errors.New("Enqueuer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{queue: opts.Queue, logger: logger.With("component", "notifications")}, nil
}

// SendConfirmation queues the order confirmation message.
func (s *NotificationService) SendConfirmation(
	ctx context.Context,
	dest Destination,
	payload model.ConfirmationPayload,
) (string, error) {
	return s.enqueue(ctx, dest, payload)
}

// SendStatusUpdate queues an order status banner.
func (s *NotificationService) SendStatusUpdate(
	ctx context.Context,
	dest Destination,
	payload model.StatusUpdatePayload,
) (string, error) {
	if !payload.OrderStatus.Valid() {
		return "", apperrors.ValidationField("order_status", "order status is not recognised")
	}
	return s.enqueue(ctx, dest, payload)
}

// SendDeliveryNotice queues the out-for-delivery message.
func (s *NotificationService) SendDeliveryNotice(
	ctx context.Context,
	dest Destination,
	payload model.DeliveryNoticePayload,
) (string, error) {
	return s.enqueue(ctx, dest, payload)
}

// Send queues any payload variant. It is the entry point for callers that
// receive the kind at runtime, such as the HTTP producer hook.
func (s *NotificationService) Send(ctx context.Context, dest Destination, payload model.Payload) (string, error) {
	switch p := payload.(type) {
	case model.ConfirmationPayload:
		return s.SendConfirmation(ctx, dest, p)
	case model.StatusUpdatePayload:
		return s.SendStatusUpdate(ctx, dest, p)
	case model.DeliveryNoticePayload:
		return s.SendDeliveryNotice(ctx, dest, p)
	default:
		return "", apperrors.ValidationField("payload", "payload is required")
	}
}

type statusRoute struct {
	status   model.OrderStatus
	delivery model.DeliveryType
}

// statusRoutes decides which message, if any, an order status change produces.
// Combinations missing from the table send nothing.
var statusRoutes = map[statusRoute]model.Kind{
	{model.OrderStatusPreparing, model.DeliveryTypePickup}:        model.KindStatusUpdate,
	{model.OrderStatusPreparing, model.DeliveryTypeDelivery}:      model.KindStatusUpdate,
	{model.OrderStatusReady, model.DeliveryTypePickup}:            model.KindStatusUpdate,
	{model.OrderStatusReady, model.DeliveryTypeDelivery}:          model.KindStatusUpdate,
	{model.OrderStatusOutForDelivery, model.DeliveryTypeDelivery}: model.KindDeliveryNotice,
	{model.OrderStatusDelivered, model.DeliveryTypePickup}:        model.KindStatusUpdate,
	{model.OrderStatusDelivered, model.DeliveryTypeDelivery}:      model.KindStatusUpdate,
	{model.OrderStatusCancelled, model.DeliveryTypePickup}:        model.KindStatusUpdate,
	{model.OrderStatusCancelled, model.DeliveryTypeDelivery}:      model.KindStatusUpdate,
}

// MessageKindFor reports which notification kind a status change maps to.
// An empty delivery type is treated as pickup.
func MessageKindFor(status model.OrderStatus, delivery model.DeliveryType) (model.Kind, bool) {
	if delivery == "" {
		delivery = model.DeliveryTypePickup
	}
	kind, ok := statusRoutes[statusRoute{status: status, delivery: delivery}]
	return kind, ok
}

// NotifyOrderStatusChange queues the message for an order status change.
// It returns an empty job id and no error when the change has no customer-facing message.
func (s *NotificationService) NotifyOrderStatusChange(ctx context.Context, change model.OrderStatusChange) (string, error) {
	if !change.Status.Valid() {
		return "", apperrors.ValidationField("status", "order status is not recognised")
	}
	if change.DeliveryType != "" && !change.DeliveryType.Valid() {
		return "", apperrors.ValidationField("delivery_type", "delivery type must be pickup or delivery")
	}

	kind, ok := MessageKindFor(change.Status, change.DeliveryType)
	if !ok {
		s.logger.DebugContext(ctx, "no notification for status change",
			"order_id", change.OrderID,
			"status", change.Status,
			"delivery_type", change.DeliveryType,
		)
		return "", nil
	}

	dest := Destination{Recipient: change.Recipient, StoreID: change.StoreID, OrderID: change.OrderID}
	switch kind {
	case model.KindDeliveryNotice:
		return s.SendDeliveryNotice(ctx, dest, model.DeliveryNoticePayload{
			CustomerName:    change.CustomerName,
			StoreName:       change.StoreName,
			OrderNumber:     change.OrderNumber,
			DeliveryAddress: change.DeliveryAddress,
			EstimatedTime:   change.EstimatedTime,
		})
	default:
		return s.SendStatusUpdate(ctx, dest, model.StatusUpdatePayload{
			CustomerName: change.CustomerName,
			StoreName:    change.StoreName,
			OrderNumber:  change.OrderNumber,
			OrderStatus:  change.Status,
			DeliveryType: change.DeliveryType,
		})
	}
}

func (s *NotificationService) enqueue(ctx context.Context, dest Destination, payload model.Payload) (string, error) {
	recipient, err := NormalizeRecipient(dest.Recipient)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dest.StoreID) == "" {
		return "", apperrors.ValidationField("store_id", "store id is required")
	}
	if strings.TrimSpace(dest.OrderID) == "" {
		return "", apperrors.ValidationField("order_id", "order id is required")
	}
	if dest.MaxAttempts < 0 {
		return "", apperrors.ValidationField("max_attempts", "max attempts must be >= 0")
	}

	return s.queue.Enqueue(ctx, &model.EnqueueRequest{
		Recipient:   recipient,
		StoreID:     strings.TrimSpace(dest.StoreID),
		OrderID:     strings.TrimSpace(dest.OrderID),
		Payload:     payload,
		MaxAttempts: dest.MaxAttempts,
	})
}

// NormalizeRecipient strips common phone number punctuation and checks the result is E.164 shaped.
func NormalizeRecipient(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", apperrors.ValidationField("recipient", "recipient is required")
	}
	if !recipientPattern.MatchString(cleaned) {
		return "", apperrors.ValidationField("recipient", "recipient must be a phone number in international format")
	}
	return cleaned, nil
}
