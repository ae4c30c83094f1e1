package repositories

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/types"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД из TEST_DATABASE_URL и применяет миграции.
// Без переменной интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	testDbUrl := os.Getenv("TEST_DATABASE_URL")
	if testDbUrl != "" {
		var err error
		testPool, err = pgxpool.New(context.Background(), testDbUrl)
		if err != nil {
			log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
		}
		if err := Migrate(context.Background(), testPool); err != nil {
			log.Fatalf("Не удалось применить миграции: %v", err)
		}
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
}

// cleanupTables очищает таблицы для обеспечения изоляции тестов.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE TABLE notification_logs, blacklist_related_orders, blacklist_entries,
		status_history, orders, addresses, manager_statuses, users RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

// seedData создает менеджера и адрес, необходимые для заявок.
func seedData(t *testing.T, pool *pgxpool.Pool) (managerID uint64, addressID uint64) {
	t.Helper()
	ctx := context.Background()
	err := pool.QueryRow(ctx,
		`INSERT INTO users (fio, username, password, role) VALUES ('Петров Петр', 'petrov', 'x', 'manager') RETURNING id`,
	).Scan(&managerID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO manager_statuses (user_id) VALUES ($1)`, managerID)
	require.NoError(t, err)
	err = pool.QueryRow(ctx,
		`INSERT INTO addresses (city, street, house) VALUES ('Москва', 'Тверская', '1') RETURNING id`,
	).Scan(&addressID)
	require.NoError(t, err)
	return
}

func createTestOrder(t *testing.T, txm TxManagerInterface, repo OrderRepositoryInterface, addressID uint64, name, phone string) *entities.Order {
	t.Helper()
	order := &entities.Order{
		ID:         uuid.New(),
		ClientName: name,
		Phone:      phone,
		AddressID:  addressID,
		Status:     constants.StatusUnassigned,
	}
	err := txm.RunInTransaction(context.Background(), func(tx pgx.Tx) error {
		return repo.CreateInTx(context.Background(), tx, order)
	})
	require.NoError(t, err)
	return order
}

func TestOrderRepository_Integration_CreateAndFind(t *testing.T) {
	requireDB(t)
	cleanupTables(t, testPool)
	_, addressID := seedData(t, testPool)
	repo := NewOrderRepository(testPool)
	txm := NewTxManager(testPool, time.Second)

	order := createTestOrder(t, txm, repo, addressID, "Иванов Иван", "+79991234567")

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Иванов Иван", found.ClientName)
	assert.Equal(t, constants.StatusUnassigned, found.Status)
	assert.Nil(t, found.AssignedManagerID)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderRepository_Integration_ActiveCountAndIdentity(t *testing.T) {
	requireDB(t)
	cleanupTables(t, testPool)
	managerID, addressID := seedData(t, testPool)
	repo := NewOrderRepository(testPool)
	txm := NewTxManager(testPool, time.Second)
	ctx := context.Background()

	first := createTestOrder(t, txm, repo, addressID, "Иванов Иван", "+79991234567")
	second := createTestOrder(t, txm, repo, addressID, "Иванов Иван", "+79991234567")
	createTestOrder(t, txm, repo, addressID, "Сидоров", "+79990000000")

	err := txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		o, err := repo.FindForUpdateInTx(ctx, tx, first.ID)
		if err != nil {
			return err
		}
		o.Status = constants.StatusAssigned
		o.AssignedManagerID = &managerID
		if err := repo.UpdateStateInTx(ctx, tx, o); err != nil {
			return err
		}

		count, err := repo.CountActiveByManagerInTx(ctx, tx, managerID, second.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		count, err = repo.CountActiveByManagerInTx(ctx, tx, managerID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		ids, err := repo.LockIDsByIdentityInTx(ctx, tx, "Иванов Иван", "+79991234567")
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
		for _, id := range ids {
			if err := repo.SetBlacklistedInTx(ctx, tx, id, true); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	orders, total, err := repo.GetOrders(ctx, types.Filter{Filter: map[string]interface{}{"is_blacklisted": "true"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Len(t, orders, 2)
}

func TestOrderRepository_Integration_ManagerRequiresActiveStatus(t *testing.T) {
	requireDB(t)
	cleanupTables(t, testPool)
	managerID, addressID := seedData(t, testPool)
	repo := NewOrderRepository(testPool)
	txm := NewTxManager(testPool, time.Second)
	ctx := context.Background()

	order := createTestOrder(t, txm, repo, addressID, "Иванов Иван", "+79991234567")
	err := txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order.Status = constants.StatusCompleted
		order.AssignedManagerID = &managerID
		return repo.UpdateStateInTx(ctx, tx, order)
	})
	assert.Error(t, err, "ограничение БД не дает держать менеджера в финальном статусе")
}

func TestTxManager_Integration_LockTimeoutMapsToConcurrentModification(t *testing.T) {
	requireDB(t)
	cleanupTables(t, testPool)
	_, addressID := seedData(t, testPool)
	repo := NewOrderRepository(testPool)
	ctx := context.Background()
	order := createTestOrder(t, NewTxManager(testPool, 0), repo, addressID, "Иванов Иван", "+79991234567")

	holder, err := testPool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()
	_, err = repo.FindForUpdateInTx(ctx, holder, order.ID)
	require.NoError(t, err)

	txm := NewTxManager(testPool, 100*time.Millisecond)
	err = txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := repo.FindForUpdateInTx(ctx, tx, order.ID)
		return err
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
}

func TestBlacklistRepository_Integration_UpsertAndRelated(t *testing.T) {
	requireDB(t)
	cleanupTables(t, testPool)
	_, addressID := seedData(t, testPool)
	orders := NewOrderRepository(testPool)
	repo := NewBlacklistRepository(testPool)
	txm := NewTxManager(testPool, time.Second)
	ctx := context.Background()

	order := createTestOrder(t, txm, orders, addressID, "Иванов Иван", "+79991234567")

	var entryID uint64
	err := txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		require.NoError(t, repo.LockIdentityInTx(ctx, tx, "Иванов Иван", "+79991234567"))
		e, err := repo.UpsertInTx(ctx, tx, "Иванов Иван", "+79991234567", "fraud")
		if err != nil {
			return err
		}
		e2, err := repo.UpsertInTx(ctx, tx, "Иванов Иван", "+79991234567", "no-show")
		if err != nil {
			return err
		}
		assert.Equal(t, e.ID, e2.ID)
		assert.Equal(t, "no-show", e2.Reason)
		entryID = e.ID
		if err := repo.AttachOrderInTx(ctx, tx, e.ID, order.ID); err != nil {
			return err
		}
		return repo.AttachOrderInTx(ctx, tx, e.ID, order.ID)
	})
	require.NoError(t, err)

	related, err := repo.RelatedOrders(ctx, nil, entryID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{order.ID}, related)

	found, err := repo.FindByIdentity(ctx, nil, "Иванов Иван", "+79991234567")
	require.NoError(t, err)
	assert.Equal(t, entryID, found.ID)

	err = txm.RunInTransaction(ctx, func(tx pgx.Tx) error { return repo.DeleteInTx(ctx, tx, entryID) })
	require.NoError(t, err)
	_, err = repo.FindByIdentity(ctx, nil, "Иванов Иван", "+79991234567")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStatusHistoryRepository_Integration_OrderedOldestFirst(t *testing.T) {
	requireDB(t)
	cleanupTables(t, testPool)
	managerID, addressID := seedData(t, testPool)
	orders := NewOrderRepository(testPool)
	repo := NewStatusHistoryRepository(testPool)
	txm := NewTxManager(testPool, time.Second)
	ctx := context.Background()

	order := createTestOrder(t, txm, orders, addressID, "Иванов Иван", "+79991234567")
	err := txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for _, st := range []string{constants.StatusUnassigned, constants.StatusAssigned, constants.StatusInProgress} {
			if err := repo.CreateInTx(ctx, tx, &entities.StatusHistory{OrderID: order.ID, Status: st, ActorID: &managerID}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	items, err := repo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, constants.StatusUnassigned, items[0].Status)
	assert.Equal(t, constants.StatusInProgress, items[2].Status)
	assert.Equal(t, "Петров Петр", items[2].ActorFio.String)
}
