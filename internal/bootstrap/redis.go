package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/target/order-notify/config"
)

var (
	errRedisNoAddr     = errors.New("redis address is required")
	errRedisNoSentinel = errors.New("redis sentinel mode requires sentinel nodes and a master name")
)

// OpenRedis connects the credentials cache backend. The topology (single node,
// sentinel or cluster) follows cfg.
//
//nolint:ireturn // the concrete client depends on the configured topology.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis: %w", err), client.Close())
	}

	if logger != nil {
		logger.InfoContext(ctx, "redis ready", "topology", redisTopology(opts), "addrs", opts.Addrs)
	}
	return client, nil
}

// redisOptions maps configuration onto a single UniversalOptions value so that
// redis.NewUniversalClient picks the client type.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password}

	switch {
	case cfg.UseSentinel:
		opts.Addrs = splitAddrs(cfg.SentinelNodes)
		opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		opts.SentinelPassword = cfg.SentinelPassword
		if len(opts.Addrs) == 0 || opts.MasterName == "" {
			return nil, errRedisNoSentinel
		}
		return opts, nil

	case cfg.UseCluster:
		opts.IsClusterMode = true
		opts.Addrs = splitAddrs(cfg.ClusterNodes)
		if len(opts.Addrs) > 0 {
			return opts, nil
		}
	}

	// Single node, or a cluster reached through one configuration endpoint.
	if err := applyRedisURI(opts, cfg.URI); err != nil {
		return nil, err
	}
	return opts, nil
}

// applyRedisURI accepts either host:port or a redis:// / rediss:// URL.
// Credentials embedded in the URL take precedence over the configured password.
func applyRedisURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return errRedisNoAddr
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis uri: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.TLSConfig = parsed.TLSConfig
	if !opts.IsClusterMode {
		opts.DB = parsed.DB
	}
	return nil
}

func splitAddrs(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, addr := range strings.Split(entry, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				out = append(out, addr)
			}
		}
	}
	return out
}

func redisTopology(opts *redis.UniversalOptions) string {
	switch {
	case opts.MasterName != "":
		return "sentinel"
	case opts.IsClusterMode:
		return "cluster"
	default:
		return "single"
	}
}
