package constants

// --- СТАТУСЫ ЗАЯВОК (совпадают со значениями в БД) ---
const (
	StatusUnassigned = "unassigned"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

// Финальные статусы: из них переходов нет.
var FinalStatuses = []string{
	StatusCompleted,
	StatusRejected,
}

// ActiveStatuses - статусы, при которых заявка держит менеджера.
var ActiveStatuses = []string{
	StatusAssigned,
	StatusInProgress,
}

var statusLabels = map[string]string{
	StatusUnassigned: "Не назначена",
	StatusAssigned:   "Назначена",
	StatusInProgress: "В работе",
	StatusCompleted:  "Исполнена",
	StatusRejected:   "Отказ",
}

// Переходы, доступные через смену статуса. В assigned заявка попадает только через назначение.
var statusTransitions = map[string][]string{
	StatusUnassigned: {StatusRejected},
	StatusAssigned:   {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusCompleted, StatusRejected},
}

func IsKnownStatus(code string) bool {
	_, ok := statusLabels[code]
	return ok
}

func IsFinalStatus(code string) bool {
	for _, s := range FinalStatuses {
		if s == code {
			return true
		}
	}
	return false
}

func IsActiveStatus(code string) bool {
	for _, s := range ActiveStatuses {
		if s == code {
			return true
		}
	}
	return false
}

// CanTransition проверяет ребро графа статусов from -> to.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusLabel возвращает человекочитаемое название статуса.
func StatusLabel(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	return code
}
