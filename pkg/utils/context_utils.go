// Файл: pkg/utils/context_utils.go

package utils

import (
	"context"

	"service-crm/internal/dto"
	"service-crm/pkg/contextkeys"
	apperrors "service-crm/pkg/errors"
)

func GetClaimsFromContext(ctx context.Context) (*dto.UserClaims, error) {
	claims, ok := ctx.Value(contextkeys.UserClaimsKey).(*dto.UserClaims)
	if !ok || claims == nil {
		return nil, apperrors.ErrUserIDNotFoundInContext
	}
	return claims, nil
}

func HasRole(claims *dto.UserClaims, roles ...string) bool {
	if claims == nil {
		return false
	}
	for _, r := range roles {
		if claims.Role == r {
			return true
		}
	}
	return false
}
