// pkg/constants/constants.go
package constants

//============== РОЛИ ==============

const (
	RoleOperator    = "operator"
	RoleCoordinator = "coordinator"
	RoleManager     = "manager"
	RoleAdmin       = "admin"
)

var Roles = []string{RoleOperator, RoleCoordinator, RoleManager, RoleAdmin}

func IsKnownRole(code string) bool {
	for _, r := range Roles {
		if r == code {
			return true
		}
	}
	return false
}

//============== СТАТУСЫ МЕНЕДЖЕРОВ ==============

const (
	ManagerFree     = "free"
	ManagerBusy     = "busy"
	ManagerDayOff   = "day_off"
	ManagerTraining = "training"
	ManagerPaired   = "paired"
)

// ManualManagerStatuses - статусы, которые можно выставить вручную.
// busy выставляет только назначение заявки.
var ManualManagerStatuses = []string{ManagerFree, ManagerDayOff, ManagerTraining, ManagerPaired}

func IsManualManagerStatus(code string) bool {
	for _, s := range ManualManagerStatuses {
		if s == code {
			return true
		}
	}
	return false
}

//============== ТИПЫ УВЕДОМЛЕНИЙ ==============

const (
	NotificationNew       = "new"
	NotificationAssigned  = "assigned"
	NotificationCanceled  = "canceled"
	NotificationCompleted = "completed"
)

//============== КАНАЛЫ ДОСТАВКИ ==============

const (
	ChannelTelegram = "telegram"
	ChannelEmail    = "email"
	ChannelLog      = "log"
)

//============== CACHE KEYS ==============

const (
	// Счетчик неудачных попыток входа.
	// Формат: login_attempts:<username> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Флаг блокировки входа после превышения лимита попыток.
	// Формат: lockout:<username> -> "locked"
	CacheKeyLockout = "lockout:%s"
)

//============== ИСТОРИЯ ==============

const HistoryCommentCreated = "Заявка создана"
