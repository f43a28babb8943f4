package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/domain/model"
	"github.com/target/order-notify/internal/mocks"
)

func TestNewDeliveryService(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := NewDeliveryService(DeliveryServiceOptions{Sender: mocks.NewMockSender(ctrl)})
	require.Error(t, err)

	_, err = NewDeliveryService(DeliveryServiceOptions{Channels: mocks.NewMockCredentialLookup(ctrl)})
	require.Error(t, err)
}

func TestDeliveryService_Deliver(t *testing.T) {
	job := model.Job{
		ID:        "job-1",
		Kind:      model.KindStatusUpdate,
		Recipient: "+5491111111111",
		StoreID:   "S1",
		OrderID:   "O1",
		Payload: model.StatusUpdatePayload{
			CustomerName: "Ana",
			OrderStatus:  model.OrderStatusReady,
			DeliveryType: model.DeliveryTypeDelivery,
		},
		MaxAttempts: 3,
	}
	channel := &model.StoreChannel{StoreID: "S1", PhoneNumberID: "109", AccessToken: "tok", Enabled: true}

	tests := []struct {
		name    string
		job     model.Job
		setup   func(channels *mocks.MockCredentialLookup, sender *mocks.MockSender)
		wantErr error
		errText string
	}{
		{
			name: "sends rendered text with store credentials",
			job:  job,
			setup: func(channels *mocks.MockCredentialLookup, sender *mocks.MockSender) {
				channels.EXPECT().GetByStoreID(gomock.Any(), "S1").Return(channel, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, msg core.OutboundMessage) error {
						assert.Equal(t, "+5491111111111", msg.Recipient)
						assert.Equal(t, "tok", msg.Channel.AccessToken)
						assert.Contains(t, msg.Text, "Ana")
						assert.Contains(t, msg.Text, "is ready!")
						return nil
					})
			},
		},
		{
			name: "store without credentials",
			job:  job,
			setup: func(channels *mocks.MockCredentialLookup, _ *mocks.MockSender) {
				channels.EXPECT().GetByStoreID(gomock.Any(), "S1").
					Return(nil, errors.Join(errors.New("no rows"), model.ErrStoreNotConfigured))
			},
			wantErr: model.ErrStoreNotConfigured,
		},
		{
			name: "disabled store",
			job:  job,
			setup: func(channels *mocks.MockCredentialLookup, _ *mocks.MockSender) {
				disabled := *channel
				disabled.Enabled = false
				channels.EXPECT().GetByStoreID(gomock.Any(), "S1").Return(&disabled, nil)
			},
			wantErr: model.ErrStoreNotConfigured,
		},
		{
			name: "lookup failure",
			job:  job,
			setup: func(channels *mocks.MockCredentialLookup, _ *mocks.MockSender) {
				channels.EXPECT().GetByStoreID(gomock.Any(), "S1").Return(nil, errors.New("connection refused"))
			},
			errText: "connection refused",
		},
		{
			name: "empty payload",
			job: func() model.Job {
				j := job
				j.Payload = nil
				return j
			}(),
			setup: func(channels *mocks.MockCredentialLookup, _ *mocks.MockSender) {
				channels.EXPECT().GetByStoreID(gomock.Any(), "S1").Return(channel, nil)
			},
			wantErr: model.ErrInvalidPayload,
		},
		{
			name: "messaging api rejects",
			job:  job,
			setup: func(channels *mocks.MockCredentialLookup, sender *mocks.MockSender) {
				channels.EXPECT().GetByStoreID(gomock.Any(), "S1").Return(channel, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("invalid recipient"))
			},
			errText: "invalid recipient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			channels := mocks.NewMockCredentialLookup(ctrl)
			sender := mocks.NewMockSender(ctrl)
			tt.setup(channels, sender)

			svc, err := NewDeliveryService(DeliveryServiceOptions{Channels: channels, Sender: sender})
			require.NoError(t, err)

			err = svc.Deliver(context.Background(), tt.job)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
			}
		})
	}
}
