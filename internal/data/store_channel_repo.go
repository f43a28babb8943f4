package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/data/cryptoutil"
	"github.com/target/order-notify/internal/data/pgxutil"
	"github.com/target/order-notify/internal/domain/model"
	apperrors "github.com/target/order-notify/internal/errors"
)

// ErrStoreChannelNotFound is returned when a store has no channel row.
// It matches model.ErrStoreNotConfigured so the delivery path treats it as retryable.
var ErrStoreChannelNotFound = fmt.Errorf("store channel not found: %w", model.ErrStoreNotConfigured)

const storeChannelColumns = `store_id, phone_number_id, access_token_encrypted, enabled, created_at, updated_at`

// storeChannelRow mirrors store_channel_settings; the token is still sealed.
type storeChannelRow struct {
	StoreID              string    `db:"store_id"`
	PhoneNumberID        string    `db:"phone_number_id"`
	AccessTokenEncrypted string    `db:"access_token_encrypted"`
	Enabled              bool      `db:"enabled"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// StoreChannelRepo persists per-store messaging credentials with the access token encrypted at rest.
type StoreChannelRepo struct {
	DB  *sql.DB
	Enc cryptoutil.Encryptor
}

var _ core.StoreChannelRepository = (*StoreChannelRepo)(nil)

// NewStoreChannelRepo creates a new StoreChannelRepo.
func NewStoreChannelRepo(db *sql.DB, enc cryptoutil.Encryptor) *StoreChannelRepo {
	return &StoreChannelRepo{DB: db, Enc: enc}
}

// GetByStoreID returns the decrypted channel for storeID, or ErrStoreChannelNotFound.
func (r *StoreChannelRepo) GetByStoreID(ctx context.Context, storeID string) (*model.StoreChannel, error) {
	var row storeChannelRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+storeChannelColumns+` FROM store_channel_settings WHERE store_id = $1`, storeID)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[storeChannelRow])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStoreChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store channel %s: %w", storeID, apperrors.MapDBError(err))
	}
	return r.open(row)
}

// Upsert creates or replaces the channel for req.StoreID.
func (r *StoreChannelRepo) Upsert(ctx context.Context, req *model.UpsertStoreChannelRequest) (*model.StoreChannel, error) {
	if req == nil {
		return nil, apperrors.Validation("store channel request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid store channel")
	}

	sealed, err := r.Enc.Encrypt([]byte(req.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("encrypt access token: %w", err)
	}

	var row storeChannelRow
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			INSERT INTO store_channel_settings (store_id, phone_number_id, access_token_encrypted, enabled)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (store_id) DO UPDATE SET
				phone_number_id = EXCLUDED.phone_number_id,
				access_token_encrypted = EXCLUDED.access_token_encrypted,
				enabled = EXCLUDED.enabled,
				updated_at = now()
			RETURNING `+storeChannelColumns,
			req.StoreID, req.PhoneNumberID, sealed, req.Enabled)
		if qErr != nil {
			return qErr
		}
		row, qErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[storeChannelRow])
		return qErr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return r.open(row)
}

// SetEnabled toggles a store's channel. It reports false when the store has no row.
func (r *StoreChannelRepo) SetEnabled(ctx context.Context, storeID string, enabled bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE store_channel_settings SET enabled = $2, updated_at = now() WHERE store_id = $1`,
		storeID, enabled)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *StoreChannelRepo) open(row storeChannelRow) (*model.StoreChannel, error) {
	token, err := r.Enc.Decrypt(row.AccessTokenEncrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token for store %s: %w", row.StoreID, err)
	}
	return &model.StoreChannel{
		StoreID:       row.StoreID,
		PhoneNumberID: row.PhoneNumberID,
		AccessToken:   string(token),
		Enabled:       row.Enabled,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
