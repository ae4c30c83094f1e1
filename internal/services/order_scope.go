package services

import (
	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/pkg/constants"
	"service-crm/pkg/types"
)

// OrderScope - какие заявки видит пользователь. Нулевое значение видит все.
type OrderScope struct {
	CreatedBy *uint64
	ManagerID *uint64
}

// ScopeFor: оператор видит созданные им заявки, менеджер - назначенные ему.
// Координатор и администратор видят все.
func ScopeFor(claims *dto.UserClaims) OrderScope {
	if claims == nil {
		return OrderScope{}
	}
	id := claims.UserID
	switch claims.Role {
	case constants.RoleOperator:
		return OrderScope{CreatedBy: &id}
	case constants.RoleManager:
		return OrderScope{ManagerID: &id}
	}
	return OrderScope{}
}

func (sc OrderScope) allows(o *entities.Order) bool {
	if sc.CreatedBy != nil && (o.CreatedBy == nil || *o.CreatedBy != *sc.CreatedBy) {
		return false
	}
	if sc.ManagerID != nil && (o.AssignedManagerID == nil || *o.AssignedManagerID != *sc.ManagerID) {
		return false
	}
	return true
}

// apply перекрывает фильтры из запроса ограничениями роли.
func (sc OrderScope) apply(filter types.Filter) types.Filter {
	if sc.CreatedBy == nil && sc.ManagerID == nil {
		return filter
	}
	scoped := make(map[string]interface{}, len(filter.Filter)+2)
	for k, v := range filter.Filter {
		scoped[k] = v
	}
	if sc.CreatedBy != nil {
		scoped["created_by"] = *sc.CreatedBy
	}
	if sc.ManagerID != nil {
		scoped["assigned_manager_id"] = *sc.ManagerID
	}
	filter.Filter = scoped
	return filter
}
