package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/order-notify/internal/domain/model"
)

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: notify-admin <command>")
	migrate := bytes.Index(buf.Bytes(), []byte("migrate"))
	storeSet := bytes.Index(buf.Bytes(), []byte("store-set"))
	require.Positive(t, migrate)
	require.Positive(t, storeSet)
	assert.Less(t, migrate, storeSet)
	for name := range commands() {
		assert.Contains(t, out, name)
	}
}

func TestParseStoreSetFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		want    storeSetOptions
	}{
		{
			name: "all flags",
			args: []string{"--store", " S1 ", "--phone-number-id", "123", "--token", "tok", "--disabled"},
			want: storeSetOptions{StoreID: "S1", PhoneNumberID: "123", Token: "tok", Disabled: true, Timeout: defaultCommandTimeout},
		},
		{
			name:    "missing store",
			args:    []string{"--phone-number-id", "123", "--token", "tok"},
			wantErr: "--store is required",
		},
		{
			name:    "missing phone number id",
			args:    []string{"--store", "S1", "--token", "tok"},
			wantErr: "--phone-number-id is required",
		},
		{
			name:    "missing token",
			args:    []string{"--store", "S1", "--phone-number-id", "123"},
			wantErr: "--token is required",
		},
		{
			name:    "non-positive timeout",
			args:    []string{"--store", "S1", "--phone-number-id", "123", "--token", "tok", "--timeout", "0s"},
			wantErr: "--timeout must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStoreSetFlags(tt.args)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStoreFlags(t *testing.T) {
	opts, err := parseStoreFlags("store-get", []string{"--store", "S9", "--timeout", "5s"})
	require.NoError(t, err)
	assert.Equal(t, storeOptions{StoreID: "S9", Timeout: 5 * time.Second}, opts)

	_, err = parseStoreFlags("store-disable", nil)
	require.EqualError(t, err, "--store is required")
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseMigrateFlags([]string{"--timeout", "-1s"})
	require.Error(t, err)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "*****efgh", maskToken("abcdeefgh"))
}

func TestPrintStoreChannelMasksToken(t *testing.T) {
	var buf bytes.Buffer
	cmdCtx := &commandContext{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Out:    &buf,
	}
	ch := &model.StoreChannel{
		StoreID:       "S1",
		PhoneNumberID: "1098765432",
		AccessToken:   "secret-token-1234",
		Enabled:       true,
		UpdatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, printStoreChannel(cmdCtx, ch))

	out := buf.String()
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "*************1234")
	assert.Contains(t, out, "enabled:         true")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
}
