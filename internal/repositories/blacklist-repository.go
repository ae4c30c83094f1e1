package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
	"service-crm/pkg/types"
)

const blacklistFields = "id, client_name, phone, reason, created_at, updated_at"

type BlacklistRepositoryInterface interface {
	// LockIdentityInTx берет advisory-блокировку на пару (ФИО, телефон) до конца транзакции.
	LockIdentityInTx(ctx context.Context, tx pgx.Tx, clientName, phone string) error
	// FindByIdentity ищет запись; tx может быть nil.
	FindByIdentity(ctx context.Context, tx pgx.Tx, clientName, phone string) (*entities.BlacklistEntry, error)
	UpsertInTx(ctx context.Context, tx pgx.Tx, clientName, phone, reason string) (*entities.BlacklistEntry, error)
	FindByID(ctx context.Context, id uint64) (*entities.BlacklistEntry, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.BlacklistEntry, error)
	AttachOrderInTx(ctx context.Context, tx pgx.Tx, entryID uint64, orderID uuid.UUID) error
	// RelatedOrders возвращает заявки, привязанные к записи; tx может быть nil.
	RelatedOrders(ctx context.Context, tx pgx.Tx, entryID uint64) ([]uuid.UUID, error)
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	GetEntries(ctx context.Context, filter types.Filter) ([]entities.BlacklistEntry, uint64, error)
}

type BlacklistRepository struct {
	storage *pgxpool.Pool
}

func NewBlacklistRepository(storage *pgxpool.Pool) BlacklistRepositoryInterface {
	return &BlacklistRepository{storage: storage}
}

func scanBlacklistEntry(row pgx.Row) (*entities.BlacklistEntry, error) {
	var e entities.BlacklistEntry
	if err := row.Scan(&e.ID, &e.ClientName, &e.Phone, &e.Reason, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BlacklistRepository) LockIdentityInTx(ctx context.Context, tx pgx.Tx, clientName, phone string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1 || chr(31) || $2, 0))`, clientName, phone)
	if err != nil {
		return fmt.Errorf("ошибка блокировки клиента: %w", mapPgError(err))
	}
	return nil
}

func (r *BlacklistRepository) FindByIdentity(ctx context.Context, tx pgx.Tx, clientName, phone string) (*entities.BlacklistEntry, error) {
	query := `SELECT ` + blacklistFields + ` FROM blacklist_entries WHERE client_name = $1 AND phone = $2`
	entry, err := scanBlacklistEntry(pick(r.storage, tx).QueryRow(ctx, query, clientName, phone))
	if err != nil {
		return nil, notFound(err, "запись черного списка")
	}
	return entry, nil
}

func (r *BlacklistRepository) UpsertInTx(ctx context.Context, tx pgx.Tx, clientName, phone, reason string) (*entities.BlacklistEntry, error) {
	query := `
		INSERT INTO blacklist_entries (client_name, phone, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT blacklist_identity_unique
		DO UPDATE SET reason = EXCLUDED.reason, updated_at = NOW()
		RETURNING ` + blacklistFields
	entry, err := scanBlacklistEntry(tx.QueryRow(ctx, query, clientName, phone, reason))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения записи черного списка: %w", mapPgError(err))
	}
	return entry, nil
}

func (r *BlacklistRepository) FindByID(ctx context.Context, id uint64) (*entities.BlacklistEntry, error) {
	entry, err := scanBlacklistEntry(r.storage.QueryRow(ctx, `SELECT `+blacklistFields+` FROM blacklist_entries WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("запись черного списка %d", id))
	}
	return entry, nil
}

func (r *BlacklistRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.BlacklistEntry, error) {
	entry, err := scanBlacklistEntry(tx.QueryRow(ctx, `SELECT `+blacklistFields+` FROM blacklist_entries WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("запись черного списка %d", id))
	}
	return entry, nil
}

func (r *BlacklistRepository) AttachOrderInTx(ctx context.Context, tx pgx.Tx, entryID uint64, orderID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO blacklist_related_orders (entry_id, order_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		entryID, orderID)
	if err != nil {
		return fmt.Errorf("ошибка привязки заявки к черному списку: %w", mapPgError(err))
	}
	return nil
}

func (r *BlacklistRepository) RelatedOrders(ctx context.Context, tx pgx.Tx, entryID uint64) ([]uuid.UUID, error) {
	rows, err := pick(r.storage, tx).Query(ctx,
		`SELECT order_id FROM blacklist_related_orders WHERE entry_id = $1 ORDER BY order_id`, entryID)
	if err != nil {
		return nil, mapPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, mapPgError(err)
	}
	return ids, nil
}

func (r *BlacklistRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	result, err := tx.Exec(ctx, `DELETE FROM blacklist_entries WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, fmt.Sprintf("запись черного списка %d", id))
	}
	return nil
}

func (r *BlacklistRepository) GetEntries(ctx context.Context, filter types.Filter) ([]entities.BlacklistEntry, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	where := sq.And{}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = append(where, sq.Or{sq.ILike{"client_name": like}, sq.ILike{"phone": like}})
	}

	countQuery, countArgs, err := psql.Select("COUNT(id)").From("blacklist_entries").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета записей черного списка: %w", err)
	}
	if total == 0 {
		return []entities.BlacklistEntry{}, 0, nil
	}

	builder := psql.Select(blacklistFields).From("blacklist_entries").Where(where).OrderBy("updated_at DESC", "id DESC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения черного списка: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.BlacklistEntry, 0)
	for rows.Next() {
		e, err := scanBlacklistEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *e)
	}
	return entries, total, rows.Err()
}
