package model

import (
	"errors"
	"strings"
	"time"
)

// StoreChannel holds a store's messaging channel configuration.
// AccessToken is plaintext in memory and encrypted at rest.
type StoreChannel struct {
	StoreID       string    `json:"store_id"        db:"store_id"`
	PhoneNumberID string    `json:"phone_number_id" db:"phone_number_id"`
	AccessToken   string    `json:"-"               db:"access_token"`
	Enabled       bool      `json:"enabled"         db:"enabled"`
	CreatedAt     time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"      db:"updated_at"`
}

// Usable reports whether the channel can be used to send messages.
func (c *StoreChannel) Usable() bool {
	return c != nil && c.Enabled && c.PhoneNumberID != "" && c.AccessToken != ""
}

// UpsertStoreChannelRequest creates or replaces a store's channel configuration.
type UpsertStoreChannelRequest struct {
	StoreID       string `json:"store_id"`
	PhoneNumberID string `json:"phone_number_id"`
	AccessToken   string `json:"access_token"`
	Enabled       bool   `json:"enabled"`
}

// Normalize trims whitespace from all string fields.
func (r *UpsertStoreChannelRequest) Normalize() {
	r.StoreID = strings.TrimSpace(r.StoreID)
	r.PhoneNumberID = strings.TrimSpace(r.PhoneNumberID)
	r.AccessToken = strings.TrimSpace(r.AccessToken)
}

// Validate validates the UpsertStoreChannelRequest fields.
func (r *UpsertStoreChannelRequest) Validate() error {
	if r.StoreID == "" {
		return errors.New("store_id is required")
	}
	if r.PhoneNumberID == "" {
		return errors.New("phone_number_id is required")
	}
	if r.AccessToken == "" {
		return errors.New("access_token is required")
	}
	return nil
}
