package dto

import (
	"github.com/aarondl/null/v8"
)

type AddressDTO struct {
	City      string      `json:"city" validate:"required,max=100"`
	Street    string      `json:"street" validate:"required,max=255"`
	House     string      `json:"house" validate:"required,max=20"`
	Building  null.String `json:"building,omitempty" validate:"omitempty,max=20"`
	Apartment null.String `json:"apartment,omitempty" validate:"omitempty,max=20"`
}

type CreateOrderDTO struct {
	ClientName string     `json:"client_name" validate:"required,min=2,max=255"`
	Phone      string     `json:"phone" validate:"required,ru_phone"`
	Address    AddressDTO `json:"address" validate:"required"`
	Comment    string     `json:"comment" validate:"max=2000"`
}

type AssignOrderDTO struct {
	ManagerID uint64 `json:"manager_id" validate:"required,gt=0"`
}

type UpdateOrderStatusDTO struct {
	Status  string `json:"status" validate:"required,oneof=in_progress completed rejected"`
	Comment string `json:"comment" validate:"max=2000"`
}

type AddToBlacklistDTO struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type OrderResponseDTO struct {
	ID                string      `json:"id"`
	ClientName        string      `json:"client_name"`
	Phone             string      `json:"phone"`
	AddressID         uint64      `json:"address_id"`
	Address           string      `json:"address,omitempty"`
	Comment           string      `json:"comment"`
	Status            string      `json:"status"`
	StatusName        string      `json:"status_name"`
	AssignedManagerID null.Uint64 `json:"assigned_manager_id"`
	IsBlacklisted     bool        `json:"is_blacklisted"`
	CreatedAt         string      `json:"created_at"`
	UpdatedAt         string      `json:"updated_at"`
}
