package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/domain/message"
	"github.com/target/order-notify/internal/domain/model"
)

// DeliveryServiceOptions groups dependencies for DeliveryService.
type DeliveryServiceOptions struct {
	Channels core.CredentialLookup // Required: per-store channel credentials
	Sender   core.Sender           // Required: external messaging API
	Logger   *slog.Logger          // Optional: structured logger
}

// DeliveryService renders a job and sends it with the store's credentials.
type DeliveryService struct {
	channels core.CredentialLookup
	sender   core.Sender
	logger   *slog.Logger
}

var _ core.Deliverer = (*DeliveryService)(nil)

// NewDeliveryService constructs a new DeliveryService.
func NewDeliveryService(opts DeliveryServiceOptions) (*DeliveryService, error) {
	if opts.Channels == nil {
		return nil, errors.New("CredentialLookup is required")
	}
	if opts.Sender == nil {
		return nil, errors.New("Sender is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DeliveryService{
		channels: opts.Channels,
		sender:   opts.Sender,
		logger:   logger.With("component", "delivery"),
	}, nil
}

// Deliver renders the job payload and hands it to the messaging API.
// A store without usable credentials is reported as model.ErrStoreNotConfigured.
func (s *DeliveryService) Deliver(ctx context.Context, job model.Job) error {
	channel, err := s.channels.GetByStoreID(ctx, job.StoreID)
	if err != nil {
		if errors.Is(err, model.ErrStoreNotConfigured) {
			return fmt.Errorf("store %s: %w", job.StoreID, model.ErrStoreNotConfigured)
		}
		return fmt.Errorf("lookup channel for store %s: %w", job.StoreID, err)
	}
	if !channel.Usable() {
		return fmt.Errorf("store %s: %w", job.StoreID, model.ErrStoreNotConfigured)
	}

	text := message.Render(job.Payload)
	if text == "" {
		return fmt.Errorf("job %s: %w", job.ID, model.ErrInvalidPayload)
	}

	if err := s.sender.Send(ctx, core.OutboundMessage{
		Recipient: job.Recipient,
		Text:      text,
		Channel:   *channel,
	}); err != nil {
		return fmt.Errorf("send %s message: %w", job.Kind, err)
	}

	s.logger.DebugContext(ctx, "message sent",
		"job_id", job.ID,
		"store_id", job.StoreID,
		"phone_number_id", channel.PhoneNumberID,
	)
	return nil
}
