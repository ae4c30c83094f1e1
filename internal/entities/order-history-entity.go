package entities

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistory - неизменяемая запись о смене статуса заявки.
type StatusHistory struct {
	ID        uint64    `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	Status    string    `json:"status" db:"status"`
	ActorID   *uint64   `json:"actor_id,omitempty" db:"actor_id"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
