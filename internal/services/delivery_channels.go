package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/mailer"
	"service-crm/pkg/telegram"
)

// DeliveryChannel доставляет текст получателю. Ошибка означает неуспешную доставку.
type DeliveryChannel interface {
	Name() string
	Send(ctx context.Context, recipient *entities.User, text string) error
}

type telegramChannel struct {
	bot telegram.ServiceInterface
}

func NewTelegramChannel(bot telegram.ServiceInterface) DeliveryChannel {
	return &telegramChannel{bot: bot}
}

func (c *telegramChannel) Name() string { return constants.ChannelTelegram }

func (c *telegramChannel) Send(ctx context.Context, recipient *entities.User, text string) error {
	if !recipient.TelegramChatID.Valid {
		return fmt.Errorf("%w: telegram_chat_id пользователя %d", apperrors.ErrNoDeliveryAddress, recipient.ID)
	}
	return c.bot.SendMessage(ctx, recipient.TelegramChatID.Int64, text)
}

type emailChannel struct {
	sender mailer.SenderInterface
}

func NewEmailChannel(sender mailer.SenderInterface) DeliveryChannel {
	return &emailChannel{sender: sender}
}

func (c *emailChannel) Name() string { return constants.ChannelEmail }

func (c *emailChannel) Send(ctx context.Context, recipient *entities.User, text string) error {
	if !recipient.Email.Valid || recipient.Email.String == "" {
		return fmt.Errorf("%w: email пользователя %d", apperrors.ErrNoDeliveryAddress, recipient.ID)
	}
	subject := "Уведомление по заявке"
	if first, _, ok := strings.Cut(text, "\n"); ok {
		subject = strings.NewReplacer("<b>", "", "</b>", "").Replace(first)
	}
	return c.sender.Send(ctx, recipient.Email.String, subject, strings.ReplaceAll(text, "\n", "<br>"))
}

// logChannel пишет сообщение в лог вместо отправки. Для разработки и тестовых стендов.
type logChannel struct {
	logger *zap.Logger
}

func NewLogChannel(logger *zap.Logger) DeliveryChannel {
	return &logChannel{logger: logger}
}

func (c *logChannel) Name() string { return constants.ChannelLog }

func (c *logChannel) Send(_ context.Context, recipient *entities.User, text string) error {
	c.logger.Info("ИМИТАЦИЯ ОТПРАВКИ УВЕДОМЛЕНИЯ",
		zap.Uint64("recipient_id", recipient.ID),
		zap.String("text", text),
	)
	return nil
}

// NewDeliveryChannel выбирает канал по имени из конфигурации.
func NewDeliveryChannel(name string, bot telegram.ServiceInterface, sender mailer.SenderInterface, logger *zap.Logger) (DeliveryChannel, error) {
	switch name {
	case constants.ChannelTelegram:
		return NewTelegramChannel(bot), nil
	case constants.ChannelEmail:
		return NewEmailChannel(sender), nil
	case constants.ChannelLog, "":
		return NewLogChannel(logger), nil
	default:
		return nil, fmt.Errorf("неизвестный канал уведомлений: %q", name)
	}
}
