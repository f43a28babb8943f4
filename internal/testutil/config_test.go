package testutil

import (
	"net/url"
	"testing"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(k, "")
		}
		cfg := DefaultTestDBConfig()
		if cfg.Host != "localhost" || cfg.Port != "55432" {
			t.Errorf("unexpected host/port %s:%s", cfg.Host, cfg.Port)
		}
		if cfg.User != "ordernotify" || cfg.DBName != "ordernotify" {
			t.Errorf("unexpected user/db %s/%s", cfg.User, cfg.DBName)
		}
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_PORT", "5432")
		if got := DefaultTestDBConfig().Port; got != "5432" {
			t.Errorf("Port = %s, want 5432", got)
		}
	})
}

func TestTestDBConfig_DSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "notify"}

	u, err := url.Parse(cfg.DSN())
	if err != nil {
		t.Fatalf("DSN did not parse: %v", err)
	}
	if u.Host != "db:5432" || u.Path != "/notify" {
		t.Errorf("unexpected DSN %s", u.Redacted())
	}
	if pw, _ := u.User.Password(); pw != "p@ss" {
		t.Errorf("password not preserved")
	}
	if u.Query().Get("sslmode") != "disable" {
		t.Errorf("sslmode = %q", u.Query().Get("sslmode"))
	}
}

func TestEnqueueRequestBuilder(t *testing.T) {
	req := NewEnqueueRequest().WithStore("S2").WithMaxAttempts(5).Build()
	if err := req.Validate(); err != nil {
		t.Fatalf("built request invalid: %v", err)
	}
	if req.StoreID != "S2" || req.MaxAttempts != 5 {
		t.Errorf("builder options not applied: %+v", req)
	}
}
