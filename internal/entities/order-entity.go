package entities

import (
	"time"

	"github.com/google/uuid"
)

// Order - заявка клиента. Меняется только через операции жизненного цикла.
type Order struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ClientName        string    `json:"client_name" db:"client_name"`
	Phone             string    `json:"phone" db:"phone"`
	AddressID         uint64    `json:"address_id" db:"address_id"`
	Comment           string    `json:"comment" db:"comment"`
	Status            string    `json:"status" db:"status"`
	AssignedManagerID *uint64   `json:"assigned_manager_id,omitempty" db:"assigned_manager_id"`
	IsBlacklisted     bool      `json:"is_blacklisted" db:"is_blacklisted"`
	CreatedBy         *uint64   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Address - адрес выполнения заявки.
type Address struct {
	ID        uint64    `json:"id" db:"id"`
	City      string    `json:"city" db:"city"`
	Street    string    `json:"street" db:"street"`
	House     string    `json:"house" db:"house"`
	Building  *string   `json:"building,omitempty" db:"building"`
	Apartment *string   `json:"apartment,omitempty" db:"apartment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (a Address) String() string {
	s := a.City + ", " + a.Street + ", д. " + a.House
	if a.Building != nil && *a.Building != "" {
		s += ", корп. " + *a.Building
	}
	if a.Apartment != nil && *a.Apartment != "" {
		s += ", кв. " + *a.Apartment
	}
	return s
}
