// Файл: pkg/telegram/service.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type ServiceInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageEx(ctx context.Context, chatID int64, text string, options ...MessageOption) error
}

type Service struct {
	botToken string
	client   *resty.Client
	limiter  *rate.Limiter
}

// NewService создает клиента Bot API. ratePerSecond <= 0 отключает ограничение частоты.
func NewService(botToken, apiURL string, ratePerSecond float64) ServiceInterface {
	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}

	return &Service{botToken: botToken, client: client, limiter: limiter}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

type MessageOption func(*sendMessageRequest)

func WithHTML() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "HTML"
	}
}

func WithMarkdownV2() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "MarkdownV2"
	}
}

// SendMessage отправляет текст с HTML-разметкой.
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	return s.SendMessageEx(ctx, chatID, text, WithHTML())
}

func (s *Service) SendMessageEx(ctx context.Context, chatID int64, text string, options ...MessageOption) error {
	reqPayload := &sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	for _, opt := range options {
		opt(reqPayload)
	}
	return s.sendRequest(ctx, "sendMessage", reqPayload)
}

func (s *Service) sendRequest(ctx context.Context, methodName string, payload interface{}) error {
	if s.botToken == "" {
		return fmt.Errorf("токен Telegram-бота не установлен")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ожидание лимита Telegram: %w", err)
	}

	var result apiResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json").
		Post(fmt.Sprintf("/bot%s/%s", s.botToken, methodName))
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса в Telegram: %w", err)
	}

	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram API %s: статус %d, %s", methodName, resp.StatusCode(), result.Description)
	}
	return nil
}
