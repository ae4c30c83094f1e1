package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type ReportFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Statuses   []string
	ManagerIDs []uint64
	Page       int
	PerPage    int
}

// ReportItem - строка отчета по заявкам (только чтение).
type ReportItem struct {
	OrderID       uuid.UUID   `json:"order_id"`
	CreatedAt     time.Time   `json:"created_at"`
	ClientName    string      `json:"client_name"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	Status        string      `json:"status"`
	StatusName    string      `json:"status_name"`
	ManagerFio    null.String `json:"manager_fio"`
	IsBlacklisted bool        `json:"is_blacklisted"`
	ClosedAt      null.Time   `json:"closed_at"`
}
