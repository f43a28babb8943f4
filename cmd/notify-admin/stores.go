package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/order-notify/internal/bootstrap"
	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/data"
	"github.com/target/order-notify/internal/data/cryptoutil"
	"github.com/target/order-notify/internal/domain/model"
)

type storeSetOptions struct {
	StoreID       string
	PhoneNumberID string
	Token         string
	Disabled      bool
	Timeout       time.Duration
}

type storeOptions struct {
	StoreID string
	Timeout time.Duration
}

// storeTools bundles the repository and the credentials cache for one command run.
type storeTools struct {
	repo  *data.StoreChannelRepo
	cache *core.ChannelCacheService
}

func runStoreSet(cmdCtx *commandContext, args []string) error {
	opts, err := parseStoreSetFlags(args)
	if err != nil {
		return err
	}
	return withStoreTools(cmdCtx, opts.Timeout, func(ctx context.Context, tools storeTools) error {
		ch, upsertErr := tools.repo.Upsert(ctx, &model.UpsertStoreChannelRequest{
			StoreID:       opts.StoreID,
			PhoneNumberID: opts.PhoneNumberID,
			AccessToken:   opts.Token,
			Enabled:       !opts.Disabled,
		})
		if upsertErr != nil {
			return fmt.Errorf("upsert store channel: %w", upsertErr)
		}
		tools.invalidate(ctx, cmdCtx, ch.StoreID)
		return printStoreChannel(cmdCtx, ch)
	})
}

func runStoreGet(cmdCtx *commandContext, args []string) error {
	opts, err := parseStoreFlags("store-get", args)
	if err != nil {
		return err
	}
	return withStoreTools(cmdCtx, opts.Timeout, func(ctx context.Context, tools storeTools) error {
		ch, getErr := tools.repo.GetByStoreID(ctx, opts.StoreID)
		if getErr != nil {
			return getErr
		}
		return printStoreChannel(cmdCtx, ch)
	})
}

func runStoreDisable(cmdCtx *commandContext, args []string) error {
	opts, err := parseStoreFlags("store-disable", args)
	if err != nil {
		return err
	}
	return withStoreTools(cmdCtx, opts.Timeout, func(ctx context.Context, tools storeTools) error {
		found, setErr := tools.repo.SetEnabled(ctx, opts.StoreID, false)
		if setErr != nil {
			return fmt.Errorf("disable store channel: %w", setErr)
		}
		if !found {
			return data.ErrStoreChannelNotFound
		}
		tools.invalidate(ctx, cmdCtx, opts.StoreID)
		return writef(cmdCtx.Out, "store %s disabled\n", opts.StoreID)
	})
}

func (t storeTools) invalidate(ctx context.Context, cmdCtx *commandContext, storeID string) {
	if err := t.cache.Invalidate(ctx, storeID); err != nil {
		cmdCtx.Logger.Warn("credentials cache invalidation failed", "store_id", storeID, "error", err)
	}
}

func printStoreChannel(cmdCtx *commandContext, ch *model.StoreChannel) error {
	return writef(cmdCtx.Out,
		"store_id:        %s\nphone_number_id: %s\naccess_token:    %s\nenabled:         %t\nupdated_at:      %s\n",
		ch.StoreID,
		ch.PhoneNumberID,
		maskToken(ch.AccessToken),
		ch.Enabled,
		ch.UpdatedAt.UTC().Format(time.RFC3339),
	)
}

// maskToken keeps the last four characters of a token.
func maskToken(token string) string {
	const visible = 4
	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-visible) + token[len(token)-visible:]
}

func withStoreTools(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, storeTools) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	enc, err := bootstrap.CreateEncryptor(cmdCtx.Config.SecretsEncryptionKey, cmdCtx.Config.IsDev, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("create encryptor: %w", err)
	}

	db, err := bootstrap.OpenPostgres(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeDB(cmdCtx, db)

	var cache core.CacheRepository
	if cmdCtx.Config.Cache.CredentialsTTL > 0 {
		client, redisErr := bootstrap.OpenRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
		if redisErr != nil {
			cmdCtx.Logger.Warn("redis unavailable, cached credentials will expire on their own", "error", redisErr)
		} else {
			defer closeRedis(cmdCtx, client)
			cache = data.NewRedisCacheRepo(client, data.DefaultCacheKeyPrefix)
		}
	}

	repo := data.NewStoreChannelRepo(db, enc)
	return f(ctx, storeTools{
		repo:  repo,
		cache: newChannelCache(cache, repo, enc, cmdCtx),
	})
}

func newChannelCache(
	cache core.CacheRepository,
	repo *data.StoreChannelRepo,
	enc cryptoutil.Encryptor,
	cmdCtx *commandContext,
) *core.ChannelCacheService {
	return core.NewChannelCacheService(core.ChannelCacheServiceOptions{
		Cache:    cache,
		Channels: repo,
		Sealer:   enc,
		TTL:      cmdCtx.Config.Cache.CredentialsTTL,
		Logger:   cmdCtx.Logger,
	})
}

func closeDB(cmdCtx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		cmdCtx.Logger.Warn("db close failed", "error", err)
	}
}

func closeRedis(cmdCtx *commandContext, client redis.UniversalClient) {
	if err := client.Close(); err != nil {
		cmdCtx.Logger.Warn("redis close failed", "error", err)
	}
}

func parseStoreSetFlags(args []string) (storeSetOptions, error) {
	fs := flag.NewFlagSet("store-set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := storeSetOptions{}
	fs.StringVar(&opts.StoreID, "store", "", "Store identifier (required)")
	fs.StringVar(&opts.PhoneNumberID, "phone-number-id", "", "Messaging phone number id (required)")
	fs.StringVar(&opts.Token, "token", "", "Messaging access token (required)")
	fs.BoolVar(&opts.Disabled, "disabled", false, "Store the channel disabled")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return storeSetOptions{}, err
	}

	opts.StoreID = strings.TrimSpace(opts.StoreID)
	opts.PhoneNumberID = strings.TrimSpace(opts.PhoneNumberID)
	opts.Token = strings.TrimSpace(opts.Token)
	switch {
	case opts.StoreID == "":
		return storeSetOptions{}, errors.New("--store is required")
	case opts.PhoneNumberID == "":
		return storeSetOptions{}, errors.New("--phone-number-id is required")
	case opts.Token == "":
		return storeSetOptions{}, errors.New("--token is required")
	case opts.Timeout <= 0:
		return storeSetOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseStoreFlags(name string, args []string) (storeOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := storeOptions{}
	fs.StringVar(&opts.StoreID, "store", "", "Store identifier (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return storeOptions{}, err
	}

	opts.StoreID = strings.TrimSpace(opts.StoreID)
	if opts.StoreID == "" {
		return storeOptions{}, errors.New("--store is required")
	}
	if opts.Timeout <= 0 {
		return storeOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}
