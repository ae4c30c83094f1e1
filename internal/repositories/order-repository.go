package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
	"service-crm/pkg/types"
)

const (
	orderTable  = "orders"
	orderFields = "id, client_name, phone, address_id, comment, status, assigned_manager_id, is_blacklisted, created_by, created_at, updated_at"
)

var allowedOrderFilters = map[string]string{
	"status":              "status",
	"assigned_manager_id": "assigned_manager_id",
	"is_blacklisted":      "is_blacklisted",
	"created_by":          "created_by",
}

// orderSortFields задает и белый список, и старшинство полей в ORDER BY.
var orderSortFields = []string{"created_at", "updated_at", "status", "client_name"}

type OrderRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	// FindForUpdateInTx блокирует строку заявки до конца транзакции.
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error)
	UpdateStateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	CountActiveByManagerInTx(ctx context.Context, tx pgx.Tx, managerID uint64, excludeID uuid.UUID) (int, error)
	// LockIDsByIdentityInTx блокирует все заявки клиента и возвращает их id.
	LockIDsByIdentityInTx(ctx context.Context, tx pgx.Tx, clientName, phone string) ([]uuid.UUID, error)
	SetBlacklistedInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, flag bool) error
	GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(
		&o.ID, &o.ClientName, &o.Phone, &o.AddressID, &o.Comment, &o.Status,
		&o.AssignedManagerID, &o.IsBlacklisted, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) CreateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	query := `
		INSERT INTO orders (id, client_name, phone, address_id, comment, status, assigned_manager_id, is_blacklisted, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := tx.QueryRow(ctx, query,
		order.ID, order.ClientName, order.Phone, order.AddressID, order.Comment, order.Status,
		order.AssignedManagerID, order.IsBlacklisted, order.CreatedBy,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания заявки: %w", mapPgError(err))
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	query := `SELECT ` + orderFields + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "заявка "+id.String())
	}
	return order, nil
}

func (r *OrderRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error) {
	query := `SELECT ` + orderFields + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "заявка "+id.String())
	}
	return order, nil
}

func (r *OrderRepository) UpdateStateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	query := `
		UPDATE orders
		SET status = $2, assigned_manager_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := tx.QueryRow(ctx, query, order.ID, order.Status, order.AssignedManagerID).Scan(&order.UpdatedAt)
	if err != nil {
		return notFound(err, "заявка "+order.ID.String())
	}
	return nil
}

func (r *OrderRepository) CountActiveByManagerInTx(ctx context.Context, tx pgx.Tx, managerID uint64, excludeID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM orders
		WHERE assigned_manager_id = $1 AND status = ANY($2) AND id <> $3`
	var count int
	if err := tx.QueryRow(ctx, query, managerID, constants.ActiveStatuses, excludeID).Scan(&count); err != nil {
		return 0, mapPgError(err)
	}
	return count, nil
}

func (r *OrderRepository) LockIDsByIdentityInTx(ctx context.Context, tx pgx.Tx, clientName, phone string) ([]uuid.UUID, error) {
	query := `SELECT id FROM orders WHERE client_name = $1 AND phone = $2 ORDER BY id FOR UPDATE`
	rows, err := tx.Query(ctx, query, clientName, phone)
	if err != nil {
		return nil, mapPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, mapPgError(err)
	}
	return ids, nil
}

func (r *OrderRepository) SetBlacklistedInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, flag bool) error {
	result, err := tx.Exec(ctx, `UPDATE orders SET is_blacklisted = $2, updated_at = NOW() WHERE id = $1`, id, flag)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "заявка "+id.String())
	}
	return nil
}

func applyOrderFilter(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		b = b.Where(sq.Or{sq.ILike{"client_name": like}, sq.ILike{"phone": like}})
	}
	for key, value := range filter.Filter {
		dbColumn, ok := allowedOrderFilters[key]
		if !ok {
			continue
		}
		items, isString := value.(string)
		switch {
		case dbColumn == "is_blacklisted" && isString:
			if flag, err := strconv.ParseBool(items); err == nil {
				b = b.Where(sq.Eq{dbColumn: flag})
			}
		case isString && strings.Contains(items, ","):
			b = b.Where(sq.Eq{dbColumn: strings.Split(items, ",")})
		default:
			b = b.Where(sq.Eq{dbColumn: value})
		}
	}
	return b
}

func applyOrderSort(b sq.SelectBuilder, sort map[string]string) sq.SelectBuilder {
	sorted := false
	for _, field := range orderSortFields {
		direction, ok := sort[field]
		if !ok {
			continue
		}
		safeDirection := "ASC"
		if strings.ToUpper(direction) == "DESC" {
			safeDirection = "DESC"
		}
		b = b.OrderBy(field + " " + safeDirection)
		sorted = true
	}
	if !sorted {
		b = b.OrderBy("created_at DESC")
	}
	return b
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countQuery, countArgs, err := applyOrderFilter(psql.Select("COUNT(id)").From(orderTable), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	selectBuilder := applyOrderFilter(psql.Select(orderFields).From(orderTable), filter)
	selectBuilder = applyOrderSort(selectBuilder, filter.Sort)
	if filter.WithPagination && filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}
