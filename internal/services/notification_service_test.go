package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
)

type MockDeliveryChannel struct {
	mock.Mock
}

func (m *MockDeliveryChannel) Name() string { return "mock" }

func (m *MockDeliveryChannel) Send(ctx context.Context, recipient *entities.User, text string) error {
	args := m.Called(ctx, recipient, text)
	return args.Error(0)
}

func newTestNotifier(channel DeliveryChannel, timeout time.Duration) (NotificationServiceInterface, *memStore) {
	store := newMemStore()
	return NewNotificationService(channel, memLogRepo{store: store}, timeout, zap.NewNop()), store
}

func TestNotify_Success(t *testing.T) {
	channel := new(MockDeliveryChannel)
	recipient := &entities.User{ID: 7, TelegramChatID: null.Int64From(700)}
	channel.On("Send", mock.Anything, recipient, "текст").Return(nil).Once()

	notifier, store := newTestNotifier(channel, time.Second)
	orderID := uuid.New()

	res := notifier.Notify(context.Background(), recipient, constants.NotificationAssigned, "текст", orderID)
	assert.True(t, res.Success)
	assert.NoError(t, res.Error)

	logs := store.logsFor(orderID)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].IsSent)
	assert.False(t, logs[0].Error.Valid)
	assert.Equal(t, uint64(7), logs[0].RecipientID)
	assert.Equal(t, constants.NotificationAssigned, logs[0].MessageType)
	channel.AssertExpectations(t)
}

func TestNotify_ChannelError(t *testing.T) {
	channel := new(MockDeliveryChannel)
	channel.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("chat not found")).Once()

	notifier, store := newTestNotifier(channel, time.Second)
	orderID := uuid.New()

	res := notifier.Notify(context.Background(), &entities.User{ID: 1}, constants.NotificationCompleted, "текст", orderID)
	assert.False(t, res.Success)
	assert.EqualError(t, res.Error, "chat not found")

	logs := store.logsFor(orderID)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].IsSent)
	assert.Equal(t, "chat not found", logs[0].Error.String)
	channel.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotify_Timeout(t *testing.T) {
	channel := new(MockDeliveryChannel)
	channel.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return(nil).Once()

	notifier, store := newTestNotifier(channel, 50*time.Millisecond)
	orderID := uuid.New()

	start := time.Now()
	res := notifier.Notify(context.Background(), &entities.User{ID: 1}, constants.NotificationAssigned, "текст", orderID)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Error, apperrors.ErrDeliveryTimeout)

	logs := store.logsFor(orderID)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].IsSent)
}

func TestNotify_ChannelPanic(t *testing.T) {
	channel := new(MockDeliveryChannel)
	channel.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("nil map") }).
		Once()

	notifier, store := newTestNotifier(channel, time.Second)
	orderID := uuid.New()

	var res DeliveryResult
	require.NotPanics(t, func() {
		res = notifier.Notify(context.Background(), &entities.User{ID: 1}, constants.NotificationAssigned, "текст", orderID)
	})
	assert.False(t, res.Success)
	assert.ErrorContains(t, res.Error, "nil map")
	assert.Len(t, store.logsFor(orderID), 1)
}

func TestNotify_CanceledRequestStillDelivers(t *testing.T) {
	channel := new(MockDeliveryChannel)
	channel.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	notifier, store := newTestNotifier(channel, time.Second)
	orderID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := notifier.Notify(ctx, &entities.User{ID: 1}, constants.NotificationCompleted, "текст", orderID)
	assert.True(t, res.Success)
	assert.Len(t, store.logsFor(orderID), 1)
}

func TestDeliveryChannels_NoAddress(t *testing.T) {
	tg := NewTelegramChannel(nil)
	err := tg.Send(context.Background(), &entities.User{ID: 3}, "текст")
	assert.ErrorIs(t, err, apperrors.ErrNoDeliveryAddress)

	email := NewEmailChannel(nil)
	err = email.Send(context.Background(), &entities.User{ID: 3}, "текст")
	assert.ErrorIs(t, err, apperrors.ErrNoDeliveryAddress)
}

func TestNewDeliveryChannel(t *testing.T) {
	ch, err := NewDeliveryChannel(constants.ChannelLog, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, constants.ChannelLog, ch.Name())
	assert.NoError(t, ch.Send(context.Background(), &entities.User{ID: 1}, "текст"))

	_, err = NewDeliveryChannel("pigeon", nil, nil, zap.NewNop())
	assert.Error(t, err)
}
