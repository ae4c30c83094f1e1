package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

// NotificationLog - запись о каждой попытке отправки уведомления.
type NotificationLog struct {
	ID          uint64      `json:"id" db:"id"`
	OrderID     uuid.UUID   `json:"order_id" db:"order_id"`
	RecipientID uint64      `json:"recipient_id" db:"recipient_id"`
	MessageType string      `json:"message_type" db:"message_type"`
	MessageText string      `json:"message_text" db:"message_text"`
	IsSent      bool        `json:"is_sent" db:"is_sent"`
	Error       null.String `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}
