package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Fio            string      `json:"fio" validate:"required,min=2,max=255"`
	Username       string      `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password       string      `json:"password" validate:"required,min=6,max=72"`
	Role           string      `json:"role" validate:"required,oneof=operator coordinator manager admin"`
	Email          null.String `json:"email,omitempty" validate:"omitempty,email"`
	TelegramChatID null.Int64  `json:"telegram_chat_id,omitempty"`
}

type ShortUserDTO struct {
	ID   uint64 `json:"id"`
	Fio  string `json:"fio"`
	Role string `json:"role"`
}

type SetManagerStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=free day_off training paired"`
}
