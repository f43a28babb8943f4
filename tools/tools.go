//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// They run through `go run` or `go install` and are not tracked in go.mod.
package tools

// Mock generation for the ports in internal/core:
//
//   go generate ./internal/mocks
//   Runs go.uber.org/mock/mockgen@v0.6.0, pinned in internal/mocks/generate.go.
//
// Integration tests need Postgres and Redis. Point them at local instances with:
//
//   TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER, TEST_DB_PASSWORD, TEST_DB_NAME
//   TEST_REDIS_ADDR, TEST_REDIS_DB
//
// Tests that depend on them skip when the services are unreachable unless
// TEST_REQUIRE_INFRA is set.
