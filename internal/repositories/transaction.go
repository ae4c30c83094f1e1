package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TxManagerInterface interface {
	RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type TxManager struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxManager создает менеджер транзакций. lockTimeout > 0 ограничивает
// ожидание блокировок строк: проигравший гонку получает ErrConcurrentModification.
func NewTxManager(pool *pgxpool.Pool, lockTimeout time.Duration) TxManagerInterface {
	return &TxManager{pool: pool, lockTimeout: lockTimeout}
}

// RunInTransaction выполняет fn в одной транзакции: коммит при nil, откат при ошибке или панике.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
			err = mapPgError(err)
		} else {
			err = tx.Commit(ctx)
			if err != nil {
				err = mapPgError(fmt.Errorf("ошибка при коммите транзакции: %w", err))
			}
		}
	}()

	if m.lockTimeout > 0 {
		// SET LOCAL не принимает параметры-плейсхолдеры.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err = tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("не удалось установить lock_timeout: %w", err)
		}
	}

	err = fn(tx)
	return err
}
