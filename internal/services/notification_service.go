// Файл: internal/services/notification_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/metrics"
)

// DeliveryResult - итог одной попытки доставки.
type DeliveryResult struct {
	Success bool
	Error   error
}

type NotificationServiceInterface interface {
	// Notify делает одну попытку доставки и всегда пишет одну запись в журнал.
	// Ошибки доставки возвращаются в DeliveryResult, паники канала перехватываются.
	Notify(ctx context.Context, recipient *entities.User, messageType, messageText string, orderID uuid.UUID) DeliveryResult
	GetLog(ctx context.Context, orderID uuid.UUID) ([]entities.NotificationLog, error)
}

type NotificationService struct {
	channel DeliveryChannel
	logRepo repositories.NotificationLogRepositoryInterface
	timeout time.Duration
	logger  *zap.Logger
}

func NewNotificationService(
	channel DeliveryChannel,
	logRepo repositories.NotificationLogRepositoryInterface,
	timeout time.Duration,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &NotificationService{
		channel: channel,
		logRepo: logRepo,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *NotificationService) Notify(ctx context.Context, recipient *entities.User, messageType, messageText string, orderID uuid.UUID) DeliveryResult {
	start := time.Now()
	result := s.deliver(ctx, recipient, messageText)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	metrics.Notifications.WithLabelValues(messageType, metrics.Result(result.Success)).Inc()

	entry := &entities.NotificationLog{
		OrderID:     orderID,
		RecipientID: recipient.ID,
		MessageType: messageType,
		MessageText: messageText,
		IsSent:      result.Success,
	}
	if result.Error != nil {
		entry.Error = null.StringFrom(result.Error.Error())
		s.logger.Warn("уведомление не доставлено",
			zap.String("order_id", orderID.String()),
			zap.Uint64("recipient_id", recipient.ID),
			zap.String("type", messageType),
			zap.String("channel", s.channel.Name()),
			zap.Error(result.Error),
		)
	}

	// Журнал пишется отдельно от транзакции заявки и не зависит от отмены запроса.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.logRepo.Create(logCtx, entry); err != nil {
		s.logger.Error("не удалось записать журнал уведомлений",
			zap.String("order_id", orderID.String()),
			zap.Uint64("recipient_id", recipient.ID),
			zap.Error(err),
		)
	}
	return result
}

func (s *NotificationService) deliver(ctx context.Context, recipient *entities.User, text string) DeliveryResult {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("паника в канале %s: %v", s.channel.Name(), p)
			}
		}()
		done <- s.channel.Send(sendCtx, recipient, text)
	}()

	select {
	case err := <-done:
		if err != nil {
			return DeliveryResult{Error: err}
		}
		return DeliveryResult{Success: true}
	case <-sendCtx.Done():
		return DeliveryResult{Error: fmt.Errorf("%w: %s", apperrors.ErrDeliveryTimeout, s.timeout)}
	}
}

func (s *NotificationService) GetLog(ctx context.Context, orderID uuid.UUID) ([]entities.NotificationLog, error) {
	return s.logRepo.FindByOrderID(ctx, orderID)
}
