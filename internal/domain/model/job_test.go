//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, Kind("sms").Valid())
	assert.False(t, Kind("").Valid())
}

func TestKind_UnmarshalText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte(" Status_Update ")))
	assert.Equal(t, KindStatusUpdate, k)

	err := k.UnmarshalText([]byte("marketing"))
	require.Error(t, err)
	assert.Equal(t, KindStatusUpdate, k, "failed unmarshal must not overwrite")
}

func TestJob_StatusAndEligibility(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	job := &Job{MaxAttempts: 3, CreatedAt: now, ScheduledAt: now}
	assert.Equal(t, JobStatusPending, job.Status())
	assert.True(t, job.Eligible(now))

	t.Run("future schedule is not eligible", func(t *testing.T) {
		j := job.Clone()
		j.ScheduledAt = now.Add(time.Second)
		assert.False(t, j.Eligible(now))
		assert.True(t, j.Eligible(now.Add(time.Second)))
	})

	t.Run("completed", func(t *testing.T) {
		j := job.Clone()
		j.ProcessedAt = &now
		assert.Equal(t, JobStatusCompleted, j.Status())
		assert.True(t, j.Terminal())
		assert.False(t, j.Eligible(now))
	})

	t.Run("failed", func(t *testing.T) {
		j := job.Clone()
		j.FailedAt = &now
		assert.Equal(t, JobStatusFailed, j.Status())
		assert.False(t, j.Eligible(now))
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		j := job.Clone()
		j.Attempts = 3
		assert.False(t, j.Eligible(now))
	})
}

func TestJob_CloneDetachesTimestamps(t *testing.T) {
	now := time.Now()
	job := &Job{ProcessedAt: &now}

	c := job.Clone()
	later := now.Add(time.Hour)
	*c.ProcessedAt = later

	assert.Equal(t, now, *job.ProcessedAt)
}

func TestJob_CloneDetachesPayload(t *testing.T) {
	total := 12.5
	job := &Job{Payload: ConfirmationPayload{
		CustomerName: "Ana",
		Items:        []Item{{Name: "Pizza", Quantity: 1, Price: 12.5}},
		Total:        &total,
	}}

	c := job.Clone()
	p, ok := c.Payload.(ConfirmationPayload)
	require.True(t, ok)
	p.Items[0].Name = "Empanada"
	*p.Total = 99

	orig := job.Payload.(ConfirmationPayload)
	assert.Equal(t, "Pizza", orig.Items[0].Name)
	assert.InDelta(t, 12.5, *orig.Total, 0)
}

func TestClonePayload(t *testing.T) {
	t.Run("pointer confirmation", func(t *testing.T) {
		src := &ConfirmationPayload{Items: []Item{{Name: "Pizza"}}}
		c, ok := ClonePayload(src).(*ConfirmationPayload)
		require.True(t, ok)
		require.NotSame(t, src, c)
		c.Items[0].Name = "Empanada"
		assert.Equal(t, "Pizza", src.Items[0].Name)
	})

	t.Run("nil items stay nil", func(t *testing.T) {
		c := ClonePayload(ConfirmationPayload{CustomerName: "Ana"}).(ConfirmationPayload)
		assert.Nil(t, c.Items)
		assert.Nil(t, c.Total)
	})

	t.Run("value payloads pass through", func(t *testing.T) {
		src := StatusUpdatePayload{CustomerName: "Ana", OrderStatus: OrderStatusReady}
		assert.Equal(t, src, ClonePayload(src))
		assert.Nil(t, ClonePayload(nil))
	})
}

func TestEnqueueRequest_Validate(t *testing.T) {
	valid := func() *EnqueueRequest {
		return &EnqueueRequest{
			Recipient: "+5491111111111",
			StoreID:   "S1",
			OrderID:   "O1",
			Payload:   ConfirmationPayload{CustomerName: "Ana"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *EnqueueRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*EnqueueRequest) {}},
		{name: "missing recipient", mutate: func(r *EnqueueRequest) { r.Recipient = " " }, wantErr: "recipient"},
		{name: "missing store", mutate: func(r *EnqueueRequest) { r.StoreID = "" }, wantErr: "store"},
		{name: "missing order", mutate: func(r *EnqueueRequest) { r.OrderID = "" }, wantErr: "order"},
		{name: "missing payload", mutate: func(r *EnqueueRequest) { r.Payload = nil }, wantErr: "payload"},
		{name: "negative attempts", mutate: func(r *EnqueueRequest) { r.MaxAttempts = -1 }, wantErr: "max attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("confirmation", func(t *testing.T) {
		raw := json.RawMessage(`{"customer_name":"Ana","total":1500,"items":[{"name":"Pizza","quantity":1,"price":1500}],"delivery_type":"pickup"}`)
		p, err := DecodePayload(KindConfirmation, raw)
		require.NoError(t, err)

		c, ok := p.(ConfirmationPayload)
		require.True(t, ok)
		assert.Equal(t, "Ana", c.CustomerName)
		require.NotNil(t, c.Total)
		assert.InDelta(t, 1500.0, *c.Total, 0.0001)
		assert.Equal(t, DeliveryTypePickup, c.DeliveryType)
		require.Len(t, c.Items, 1)
	})

	t.Run("status update", func(t *testing.T) {
		p, err := DecodePayload(KindStatusUpdate, json.RawMessage(`{"order_status":"ready"}`))
		require.NoError(t, err)
		assert.Equal(t, KindStatusUpdate, p.Kind())
	})

	t.Run("delivery notice", func(t *testing.T) {
		p, err := DecodePayload(KindDeliveryNotice, json.RawMessage(`{"delivery_address":"Calle 1"}`))
		require.NoError(t, err)
		assert.Equal(t, KindDeliveryNotice, p.Kind())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := DecodePayload(Kind("sms"), json.RawMessage(`{}`))
		require.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodePayload(KindConfirmation, json.RawMessage(`{"items":"nope"}`))
		require.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := DecodePayload(KindConfirmation, nil)
		require.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestStoreChannel_Usable(t *testing.T) {
	var nilChannel *StoreChannel
	assert.False(t, nilChannel.Usable())
	assert.False(t, (&StoreChannel{PhoneNumberID: "1", AccessToken: "t"}).Usable())
	assert.True(t, (&StoreChannel{PhoneNumberID: "1", AccessToken: "t", Enabled: true}).Usable())
}

func TestUpsertStoreChannelRequest_Validate(t *testing.T) {
	req := &UpsertStoreChannelRequest{StoreID: " S1 ", PhoneNumberID: " 123 ", AccessToken: " tok "}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "S1", req.StoreID)

	req.AccessToken = ""
	assert.Error(t, req.Validate())
}
