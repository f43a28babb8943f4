// Package core defines the ports between the notification services and their adapters.
package core

import (
	"context"
	"time"

	"github.com/target/order-notify/internal/domain/model"
)

// This file contains port definitions (hexagonal architecture).
// Services depend on these interfaces; data and adapter packages implement them.

// StoreChannelRepository persists per-store messaging channel configuration.
type StoreChannelRepository interface {
	// GetByStoreID returns the channel for a store. A store without a row yields
	// an error matching model.ErrStoreNotConfigured.
	GetByStoreID(ctx context.Context, storeID string) (*model.StoreChannel, error)
	Upsert(ctx context.Context, req *model.UpsertStoreChannelRequest) (*model.StoreChannel, error)
	SetEnabled(ctx context.Context, storeID string, enabled bool) (bool, error)
}

// CredentialLookup resolves channel credentials for a store on the delivery path.
type CredentialLookup interface {
	GetByStoreID(ctx context.Context, storeID string) (*model.StoreChannel, error)
}

// OutboundMessage is one rendered message ready for the external messaging API.
type OutboundMessage struct {
	Recipient string
	Text      string
	Channel   model.StoreChannel
}

// Sender delivers a rendered message to the external messaging API.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// Deliverer renders and sends the message for one job.
type Deliverer interface {
	Deliver(ctx context.Context, job model.Job) error
}

// Enqueuer accepts new notification jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, req *model.EnqueueRequest) (string, error)
}

// QueueInspector is the read and control surface used by operators.
type QueueInspector interface {
	Stats() model.JobStats
	JobsByStatus(status model.JobStatus) []model.Job
	Get(id string) (model.Job, bool)
	StatusOf(id string) (model.JobStatus, bool)
	Snapshot(id string) (model.Job, model.JobStatus, bool)
	Cancel(id string) bool
	Retry(id string) bool
	Prioritize(id string) bool
}

// TokenSealer encrypts values before they leave the process.
type TokenSealer interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// JobCleaner removes terminal jobs older than a maximum age.
type JobCleaner interface {
	Cleanup(maxAge time.Duration) int
}
