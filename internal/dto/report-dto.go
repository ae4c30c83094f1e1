package dto

type ReportFilterDTO struct {
	DateFrom   string   `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string   `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Statuses   []string `query:"status" validate:"omitempty,dive,oneof=unassigned assigned in_progress completed rejected"`
	ManagerIDs []uint64 `query:"manager_id"`
	Page       int      `query:"page" validate:"omitempty,gte=1"`
	PerPage    int      `query:"per_page" validate:"omitempty,gte=1,lte=1000"`
}
