// Файл: internal/entities/user-entity.go
package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type User struct {
	ID       uint64 `json:"id" db:"id"`
	Fio      string `json:"fio" db:"fio"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
	Role     string `json:"role" db:"role"`

	Email          null.String `json:"email,omitempty" db:"email"`
	TelegramChatID null.Int64  `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ManagerStatus - доступность менеджера. Одна запись на пользователя с ролью manager.
type ManagerStatus struct {
	UserID    uint64    `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
