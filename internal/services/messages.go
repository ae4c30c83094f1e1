package services

import (
	"fmt"
	"html"
	"strings"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
)

// Тексты уведомлений в HTML-разметке Telegram. Пользовательский ввод экранируется.

func newOrderMessage(order *entities.Order, address string) string {
	return strings.Join([]string{
		fmt.Sprintf("<b>Новая заявка №%s</b>", order.ID),
		"Клиент: " + html.EscapeString(order.ClientName),
		"Телефон: " + order.Phone,
		"Адрес: " + html.EscapeString(address),
		"Статус: " + constants.StatusLabel(order.Status),
	}, "\n")
}

func assignedMessage(order *entities.Order, address string) string {
	lines := []string{
		fmt.Sprintf("<b>Новая заявка №%s</b>", order.ID),
		"Клиент: " + html.EscapeString(order.ClientName),
		"Адрес: " + html.EscapeString(address),
		"Телефон: " + order.Phone,
		"Статус: " + constants.StatusLabel(constants.StatusAssigned),
	}
	if order.Comment != "" {
		lines = append(lines, "Комментарий: "+html.EscapeString(order.Comment))
	}
	return strings.Join(lines, "\n")
}

func completedMessage(order *entities.Order, managerName, address string) string {
	if managerName == "" {
		managerName = "Не назначен"
	}
	return strings.Join([]string{
		fmt.Sprintf("<b>Заявка №%s завершена</b>", order.ID),
		"Клиент: " + html.EscapeString(order.ClientName),
		"Телефон: " + order.Phone,
		"Адрес: " + html.EscapeString(address),
		"Менеджер: " + html.EscapeString(managerName),
		"Статус: " + constants.StatusLabel(order.Status),
	}, "\n")
}

func canceledMessage(order *entities.Order, reason, address string) string {
	if reason == "" {
		reason = "не указана"
	}
	return strings.Join([]string{
		fmt.Sprintf("<b>Заявка №%s отменена</b>", order.ID),
		"Причина: " + html.EscapeString(reason),
		"Клиент: " + html.EscapeString(order.ClientName),
		"Адрес: " + html.EscapeString(address),
	}, "\n")
}

func assignedHistoryComment(manager *entities.User) string {
	return fmt.Sprintf("Назначен менеджер: %s", manager.Fio)
}

func reassignedHistoryComment(previous, manager *entities.User) string {
	return fmt.Sprintf("Переназначено: %s -> %s", previous.Fio, manager.Fio)
}
