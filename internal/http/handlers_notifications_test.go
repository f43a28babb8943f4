package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/domain/model"
	"github.com/target/order-notify/internal/service"
)

type deliverFunc func(ctx context.Context, job model.Job) error

func (f deliverFunc) Deliver(ctx context.Context, job model.Job) error { return f(ctx, job) }

type apiHarness struct {
	queue   *service.QueueService
	handler http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAPIHarness(t *testing.T, deliver deliverFunc) *apiHarness {
	t.Helper()
	if deliver == nil {
		deliver = func(context.Context, model.Job) error { return nil }
	}

	var seq atomic.Int64
	q, err := service.NewQueueService(service.QueueServiceOptions{
		Deliverer: deliver,
		Config: config.DispatcherConfig{
			Interval:      time.Second,
			MaxConcurrent: 3,
			MaxAttempts:   3,
			BackoffBase:   time.Second,
			BackoffMax:    time.Minute,
		},
		NewID:  func() string { return fmt.Sprintf("job-%d", seq.Add(1)) },
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	producer, err := service.NewNotificationService(service.NotificationServiceOptions{Queue: q, Logger: discardLogger()})
	require.NoError(t, err)

	router := NewRouter(RouterServices{
		Notifications: &NotificationHandlers{Queue: q, Producer: producer},
		MaxBodyBytes:  4096,
		Logger:        discardLogger(),
	})
	return &apiHarness{queue: q, handler: router}
}

func (h *apiHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const confirmationBody = `{
	"kind": "confirmation",
	"recipient": "+54 9 11 1111-1111",
	"store_id": "S1",
	"order_id": "O1",
	"payload": {
		"customer_name": "Ana",
		"total": 1500,
		"items": [{"name": "Pizza", "quantity": 1, "price": 1500}],
		"delivery_type": "pickup"
	}
}`

func (h *apiHarness) enqueue(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/notifications", confirmationBody)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	return decodeBody[enqueueResponse](t, rec).JobID
}

func TestEnqueueEndpoint(t *testing.T) {
	h := newAPIHarness(t, nil)

	id := h.enqueue(t)
	assert.Equal(t, "job-1", id)

	job, ok := h.queue.Get(id)
	require.True(t, ok)
	assert.Equal(t, "+5491111111111", job.Recipient)
	assert.Equal(t, model.KindConfirmation, job.Kind)

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
		wantField string
	}{
		{
			name:      "unknown kind",
			body:      `{"kind":"sms","recipient":"+5491111111111","store_id":"S1","order_id":"O1","payload":{}}`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_json",
		},
		{
			name:      "missing payload",
			body:      `{"kind":"confirmation","recipient":"+5491111111111","store_id":"S1","order_id":"O1"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "validation",
			wantField: "payload",
		},
		{
			name:      "bad recipient",
			body:      `{"kind":"status_update","recipient":"abc","store_id":"S1","order_id":"O1","payload":{"order_status":"ready"}}`,
			wantCode:  http.StatusBadRequest,
			wantError: "validation",
			wantField: "recipient",
		},
		{
			name:      "missing store",
			body:      `{"kind":"delivery_notice","recipient":"+5491111111111","order_id":"O1","payload":{}}`,
			wantCode:  http.StatusBadRequest,
			wantError: "validation",
			wantField: "store_id",
		},
		{
			name:      "unknown field",
			body:      `{"kind":"confirmation","color":"blue"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_json",
		},
		{
			name:      "empty body",
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_json",
		},
		{
			name:      "too large",
			body:      `{"kind":"confirmation","recipient":"` + strings.Repeat("1", 5000) + `"}`,
			wantCode:  http.StatusRequestEntityTooLarge,
			wantError: "body_too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/api/notifications", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decodeBody[errorBody](t, rec)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
		})
	}

	assert.Equal(t, 1, h.queue.Stats().Pending)
}

func TestStatsAndListEndpoints(t *testing.T) {
	release := make(chan struct{})
	var first string
	h := newAPIHarness(t, func(ctx context.Context, job model.Job) error {
		if job.ID == first {
			<-release
			return nil
		}
		return errors.New("rejected by provider")
	})

	first = h.enqueue(t)
	second := h.enqueue(t)

	rec := h.do(t, http.MethodGet, "/api/notifications/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.JobStats{Pending: 2}, decodeBody[model.JobStats](t, rec))

	q := h.queue
	assert.Zero(t, q.Tick(context.Background(), time.Now().Add(-time.Hour)), "jobs are not yet due")

	require.Equal(t, 2, q.Tick(context.Background(), time.Now()))
	require.Eventually(t, func() bool {
		s := q.Stats()
		return s.Processing == 1 && s.Pending == 1
	}, time.Second, 5*time.Millisecond)

	rec = h.do(t, http.MethodGet, "/api/notifications/jobs?status=processing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[jobListResponse](t, rec)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, first, list.Jobs[0].ID)
	assert.Equal(t, model.JobStatusProcessing, list.Jobs[0].Status)

	rec = h.do(t, http.MethodGet, "/api/notifications/jobs?status=pending", "")
	list = decodeBody[jobListResponse](t, rec)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, second, list.Jobs[0].ID)
	assert.Equal(t, 1, list.Jobs[0].Attempts)
	assert.Equal(t, "rejected by provider", list.Jobs[0].LastError)

	close(release)
	q.Wait()

	rec = h.do(t, http.MethodGet, "/api/notifications/jobs?status=completed", "")
	list = decodeBody[jobListResponse](t, rec)
	require.Len(t, list.Jobs, 1)
	assert.NotNil(t, list.Jobs[0].ProcessedAt)

	t.Run("invalid status", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/notifications/jobs?status=archived", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "status", decodeBody[errorBody](t, rec).Field)
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/notifications/jobs?status=failed", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"jobs":[]`)
	})
}

func TestGetJobEndpoint(t *testing.T) {
	h := newAPIHarness(t, nil)
	id := h.enqueue(t)

	rec := h.do(t, http.MethodGet, "/api/notifications/jobs/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	job := decodeBody[JobSummary](t, rec)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "S1", job.StoreID)
	assert.Equal(t, 3, job.MaxAttempts)

	rec = h.do(t, http.MethodGet, "/api/notifications/jobs/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[errorBody](t, rec).Error)
}

func TestGetJobEndpointReportsInFlightStatus(t *testing.T) {
	release := make(chan struct{})
	h := newAPIHarness(t, func(context.Context, model.Job) error {
		<-release
		return nil
	})
	id := h.enqueue(t)
	require.Equal(t, 1, h.queue.Tick(context.Background(), time.Now()))

	rec := h.do(t, http.MethodGet, "/api/notifications/jobs/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	job := decodeBody[JobSummary](t, rec)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, model.JobStatusProcessing, job.Status)

	close(release)
	h.queue.Wait()

	rec = h.do(t, http.MethodGet, "/api/notifications/jobs/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.JobStatusCompleted, decodeBody[JobSummary](t, rec).Status)
}

func TestActionEndpoint(t *testing.T) {
	h := newAPIHarness(t, nil)
	first := h.enqueue(t)
	second := h.enqueue(t)

	action := func(name, id string) *httptest.ResponseRecorder {
		return h.do(t, http.MethodPost, "/api/notifications/actions",
			fmt.Sprintf(`{"action":%q,"job_id":%q}`, name, id))
	}
	success := func(rec *httptest.ResponseRecorder) bool {
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decodeBody[actionResponse](t, rec).Success
	}

	assert.True(t, success(action(ActionPrioritize, second)))
	pending := h.queue.JobsByStatus(model.JobStatusPending)
	require.Len(t, pending, 2)
	assert.Equal(t, second, pending[0].ID)

	assert.True(t, success(action(ActionCancel, first)))
	assert.False(t, success(action(ActionCancel, first)), "already terminal")

	job, ok := h.queue.Get(first)
	require.True(t, ok)
	assert.Equal(t, model.CancelledError, job.LastError)

	assert.True(t, success(action(ActionRetry, first)))
	assert.False(t, success(action(ActionRetry, second)), "pending jobs cannot be retried")
	assert.False(t, success(action(ActionRetry, "unknown")))
	assert.False(t, success(action(ActionPrioritize, "")))

	rec := action("delete_job", first)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "action", decodeBody[errorBody](t, rec).Field)

	assert.Equal(t, model.JobStats{Pending: 2}, h.queue.Stats())
}

func TestOrderStatusEndpoint(t *testing.T) {
	h := newAPIHarness(t, nil)

	body := func(status, deliveryType string) string {
		return fmt.Sprintf(`{
			"status": %q,
			"delivery_type": %q,
			"recipient": "+5491111111111",
			"store_id": "S1",
			"store_name": "Pizzeria",
			"customer_name": "Ana"
		}`, status, deliveryType)
	}

	tests := []struct {
		name       string
		path       string
		body       string
		wantCode   int
		wantQueued bool
		wantKind   model.Kind
	}{
		{name: "ready pickup", path: "/api/orders/O1/status", body: body("ready", "pickup"),
			wantCode: http.StatusAccepted, wantQueued: true, wantKind: model.KindStatusUpdate},
		{name: "out for delivery", path: "/api/orders/O2/status", body: body("out_for_delivery", "delivery"),
			wantCode: http.StatusAccepted, wantQueued: true, wantKind: model.KindDeliveryNotice},
		{name: "out for delivery pickup is skipped", path: "/api/orders/O3/status",
			body: body("out_for_delivery", "pickup"), wantCode: http.StatusOK},
		{name: "pending sends nothing", path: "/api/orders/O4/status", body: body("pending", "delivery"),
			wantCode: http.StatusOK},
		{name: "unknown status", path: "/api/orders/O5/status", body: body("lost", "delivery"),
			wantCode: http.StatusBadRequest},
		{name: "mismatched order id", path: "/api/orders/O6/status",
			body: `{"order_id":"O7","status":"ready","recipient":"+5491111111111","store_id":"S1"}`,
			wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusBadRequest {
				return
			}

			resp := decodeBody[orderStatusResponse](t, rec)
			assert.Equal(t, tt.wantQueued, resp.Queued)
			if !tt.wantQueued {
				assert.Empty(t, resp.JobID)
				return
			}
			job, ok := h.queue.Get(resp.JobID)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, job.Kind)
			assert.Equal(t, strings.Split(tt.path, "/")[3], job.OrderID)
		})
	}
}
