// Package mocks provides gomock implementations of the ports declared in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	sender := mocks.NewMockSender(ctrl)
//	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sender_mock.go github.com/target/order-notify/internal/core Sender
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_lookup_mock.go github.com/target/order-notify/internal/core CredentialLookup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=store_channel_repository_mock.go github.com/target/order-notify/internal/core StoreChannelRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/order-notify/internal/core CacheRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=deliverer_mock.go github.com/target/order-notify/internal/core Deliverer
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=enqueuer_mock.go github.com/target/order-notify/internal/core Enqueuer
