package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
)

type ReportRepositoryInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error)
}

type reportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// 1. Общая база для COUNT и основного запроса
	baseSelect := psql.Select().
		From("orders o").
		Join("addresses a ON a.id = o.address_id").
		LeftJoin("users m ON m.id = o.assigned_manager_id")

	// 2. Фильтры
	if filter.DateFrom != nil {
		baseSelect = baseSelect.Where(sq.GtOrEq{"o.created_at": filter.DateFrom})
	}
	if filter.DateTo != nil {
		baseSelect = baseSelect.Where(sq.LtOrEq{"o.created_at": filter.DateTo})
	}
	if len(filter.Statuses) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"o.status": filter.Statuses})
	}
	if len(filter.ManagerIDs) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"o.assigned_manager_id": filter.ManagerIDs})
	}

	// 3. COUNT
	countQuery, countArgs, err := baseSelect.Columns("COUNT(o.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var totalCount uint64
	if err = r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if totalCount == 0 {
		return []entities.ReportItem{}, 0, nil
	}

	// 4. Колонки и сортировка. У закрытой заявки менеджер уже снят, m.fio будет NULL.
	mainBuilder := baseSelect.Columns(
		"o.id", "o.created_at", "o.client_name", "o.phone",
		"concat_ws(', ', a.city, a.street, 'д. ' || a.house, 'корп. ' || a.building, 'кв. ' || a.apartment)",
		"o.status", "m.fio", "o.is_blacklisted",
	).Column(sq.Expr(
		"(SELECT MAX(h.created_at) FROM status_history h WHERE h.order_id = o.id AND h.status = ANY(?))",
		constants.FinalStatuses,
	)).OrderBy("o.created_at DESC")

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		mainBuilder = mainBuilder.Limit(uint64(filter.PerPage)).Offset(uint64((page - 1) * filter.PerPage))
	}

	sql, args, err := mainBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки основного запроса: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения основного запроса: %w", err)
	}
	defer rows.Close()

	reportItems := make([]entities.ReportItem, 0)
	for rows.Next() {
		var item entities.ReportItem
		err := rows.Scan(
			&item.OrderID, &item.CreatedAt, &item.ClientName, &item.Phone,
			&item.Address, &item.Status, &item.ManagerFio, &item.IsBlacklisted, &item.ClosedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		item.StatusName = constants.StatusLabel(item.Status)
		reportItems = append(reportItems, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return reportItems, totalCount, nil
}
