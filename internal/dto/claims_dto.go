// Файл: internal/dto/claims_dto.go
package dto

// UserClaims хранит данные пользователя, доступные в контексте запроса.
type UserClaims struct {
	UserID uint64 `json:"userId"`
	Role   string `json:"role"`
}
