package entities

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry - запись черного списка, уникальна по паре (ФИО, телефон).
type BlacklistEntry struct {
	ID            uint64      `json:"id" db:"id"`
	ClientName    string      `json:"client_name" db:"client_name"`
	Phone         string      `json:"phone" db:"phone"`
	Reason        string      `json:"reason" db:"reason"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	RelatedOrders []uuid.UUID `json:"related_orders" db:"-"`
}
