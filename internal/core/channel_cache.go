package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/order-notify/internal/domain/model"
)

// ChannelCacheService is a read-through cache in front of StoreChannelRepository.
// Cached entries carry the access token sealed with the configured TokenSealer.
type ChannelCacheService struct {
	cache    CacheRepository
	channels CredentialLookup
	sealer   TokenSealer
	ttl      time.Duration
	logger   *slog.Logger
}

// ChannelCacheServiceOptions bundles dependencies for NewChannelCacheService.
type ChannelCacheServiceOptions struct {
	Cache    CacheRepository
	Channels CredentialLookup
	Sealer   TokenSealer
	TTL      time.Duration
	Logger   *slog.Logger
}

type cachedChannel struct {
	StoreID       string `json:"store_id"`
	PhoneNumberID string `json:"phone_number_id"`
	SealedToken   string `json:"sealed_token"`
	Enabled       bool   `json:"enabled"`
}

// NewChannelCacheService creates a new ChannelCacheService.
func NewChannelCacheService(opts ChannelCacheServiceOptions) *ChannelCacheService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelCacheService{
		cache:    opts.Cache,
		channels: opts.Channels,
		sealer:   opts.Sealer,
		ttl:      opts.TTL,
		logger:   logger.With("component", "channel_cache"),
	}
}

// GetByStoreID returns the cached channel or loads it from the repository.
// Cache failures degrade to a direct repository read.
func (s *ChannelCacheService) GetByStoreID(ctx context.Context, storeID string) (*model.StoreChannel, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.channels.GetByStoreID(ctx, storeID)
	}

	key := channelKey(storeID)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "channel cache read failed", "store_id", storeID, "error", err)
	} else if len(raw) > 0 {
		ch, decodeErr := s.decode(raw)
		if decodeErr == nil {
			return ch, nil
		}
		s.logger.WarnContext(ctx, "discarding unreadable cached channel", "store_id", storeID, "error", decodeErr)
	}

	ch, err := s.channels.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if encoded, encErr := s.encode(ch); encErr != nil {
		s.logger.WarnContext(ctx, "channel cache encode failed", "store_id", storeID, "error", encErr)
	} else if setErr := s.cache.Set(ctx, key, encoded, s.ttl); setErr != nil {
		s.logger.WarnContext(ctx, "channel cache write failed", "store_id", storeID, "error", setErr)
	}
	return ch, nil
}

// Invalidate drops the cached channel for a store.
func (s *ChannelCacheService) Invalidate(ctx context.Context, storeID string) error {
	if s.cache == nil {
		return nil
	}
	_, err := s.cache.Delete(ctx, channelKey(storeID))
	return err
}

func (s *ChannelCacheService) encode(ch *model.StoreChannel) ([]byte, error) {
	sealed, err := s.sealer.Encrypt([]byte(ch.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("seal token: %w", err)
	}
	return json.Marshal(cachedChannel{
		StoreID:       ch.StoreID,
		PhoneNumberID: ch.PhoneNumberID,
		SealedToken:   sealed,
		Enabled:       ch.Enabled,
	})
}

func (s *ChannelCacheService) decode(raw []byte) (*model.StoreChannel, error) {
	var c cachedChannel
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	token, err := s.sealer.Decrypt(c.SealedToken)
	if err != nil {
		return nil, fmt.Errorf("unseal token: %w", err)
	}
	return &model.StoreChannel{
		StoreID:       c.StoreID,
		PhoneNumberID: c.PhoneNumberID,
		AccessToken:   string(token),
		Enabled:       c.Enabled,
	}, nil
}

func channelKey(storeID string) string {
	return "store:channel:" + storeID
}
