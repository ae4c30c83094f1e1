package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/types"
)

// memStore - хранилище в памяти для тестов сервисов.
// Транзакции выполняются строго по одной, при ошибке состояние откатывается.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users      map[uint64]entities.User
	statuses   map[uint64]entities.ManagerStatus
	addresses  map[uint64]entities.Address
	orders     map[uuid.UUID]entities.Order
	history    []entities.StatusHistory
	blacklist  map[uint64]entities.BlacklistEntry
	related    map[uint64][]uuid.UUID
	nextID     uint64
	logs       []entities.NotificationLog
	historyErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint64]entities.User{},
		statuses:  map[uint64]entities.ManagerStatus{},
		addresses: map[uint64]entities.Address{},
		orders:    map[uuid.UUID]entities.Order{},
		blacklist: map[uint64]entities.BlacklistEntry{},
		related:   map[uint64][]uuid.UUID{},
		nextID:    100,
	}
}

type memSnapshot struct {
	users     map[uint64]entities.User
	statuses  map[uint64]entities.ManagerStatus
	addresses map[uint64]entities.Address
	orders    map[uuid.UUID]entities.Order
	history   []entities.StatusHistory
	blacklist map[uint64]entities.BlacklistEntry
	related   map[uint64][]uuid.UUID
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	related := make(map[uint64][]uuid.UUID, len(s.related))
	for k, v := range s.related {
		related[k] = append([]uuid.UUID(nil), v...)
	}
	return memSnapshot{
		users:     cloneMap(s.users),
		statuses:  cloneMap(s.statuses),
		addresses: cloneMap(s.addresses),
		orders:    cloneMap(s.orders),
		history:   append([]entities.StatusHistory(nil), s.history...),
		blacklist: cloneMap(s.blacklist),
		related:   related,
	}
}

// restore не трогает журнал уведомлений: он пишется вне транзакций.
func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.statuses = snap.statuses
	s.addresses = snap.addresses
	s.orders = snap.orders
	s.history = snap.history
	s.blacklist = snap.blacklist
	s.related = snap.related
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(fio, role string) entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entities.User{
		ID:             s.id(),
		Fio:            fio,
		Username:       fmt.Sprintf("user%d", s.nextID),
		Role:           role,
		TelegramChatID: null.Int64From(int64(s.nextID)),
		CreatedAt:      time.Now(),
	}
	s.users[u.ID] = u
	if role == constants.RoleManager {
		s.statuses[u.ID] = entities.ManagerStatus{UserID: u.ID, Status: constants.ManagerFree, UpdatedAt: time.Now()}
	}
	return u
}

func (s *memStore) order(id uuid.UUID) entities.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) managerStatus(id uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id].Status
}

func (s *memStore) historyFor(id uuid.UUID) []entities.StatusHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.StatusHistory
	for _, h := range s.history {
		if h.OrderID == id {
			out = append(out, h)
		}
	}
	return out
}

func (s *memStore) logsFor(id uuid.UUID) []entities.NotificationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.NotificationLog
	for _, l := range s.logs {
		if l.OrderID == id {
			out = append(out, l)
		}
	}
	return out
}

func (s *memStore) setHistoryErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyErr = err
}

// --- TxManager ---

type memTxManager struct{ store *memStore }

func (m memTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.store.restore(snap)
			panic(p)
		}
		if err != nil {
			m.store.restore(snap)
		}
	}()
	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(nil)
}

// --- заявки ---

type memOrderRepo struct{ store *memStore }

func (r memOrderRepo) CreateInTx(_ context.Context, _ pgx.Tx, order *entities.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; ok {
		return apperrors.ErrAlreadyExists
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	s.orders[order.ID] = *order
	return nil
}

func (r memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &o, nil
}

func (r memOrderRepo) FindForUpdateInTx(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*entities.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrderRepo) UpdateStateInTx(_ context.Context, _ pgx.Tx, order *entities.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[order.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	// Тот же CHECK, что и в БД.
	if order.AssignedManagerID != nil && !constants.IsActiveStatus(order.Status) {
		return fmt.Errorf("orders_manager_only_when_active: %s", order.Status)
	}
	stored.Status = order.Status
	stored.AssignedManagerID = order.AssignedManagerID
	stored.UpdatedAt = time.Now()
	s.orders[order.ID] = stored
	return nil
}

func (r memOrderRepo) CountActiveByManagerInTx(_ context.Context, _ pgx.Tx, managerID uint64, excludeID uuid.UUID) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.ID != excludeID && o.AssignedManagerID != nil && *o.AssignedManagerID == managerID && constants.IsActiveStatus(o.Status) {
			n++
		}
	}
	return n, nil
}

func (r memOrderRepo) LockIDsByIdentityInTx(_ context.Context, _ pgx.Tx, clientName, phone string) ([]uuid.UUID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for _, o := range s.orders {
		if o.ClientName == clientName && o.Phone == phone {
			ids = append(ids, o.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r memOrderRepo) SetBlacklistedInTx(_ context.Context, _ pgx.Tx, id uuid.UUID, flag bool) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.IsBlacklisted = flag
	s.orders[id] = o
	return nil
}

// GetOrders понимает только фильтры created_by и assigned_manager_id.
func (r memOrderRepo) GetOrders(_ context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := func(v interface{}, ref *uint64) bool {
		id, ok := v.(uint64)
		return !ok || (ref != nil && *ref == id)
	}
	out := make([]entities.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if v, ok := filter.Filter["created_by"]; ok && !matches(v, o.CreatedBy) {
			continue
		}
		if v, ok := filter.Filter["assigned_manager_id"]; ok && !matches(v, o.AssignedManagerID) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, uint64(len(out)), nil
}

// --- адреса ---

type memAddressRepo struct{ store *memStore }

func (r memAddressRepo) CreateInTx(_ context.Context, _ pgx.Tx, address *entities.Address) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	address.ID = s.id()
	address.CreatedAt = time.Now()
	s.addresses[address.ID] = *address
	return nil
}

func (r memAddressRepo) FindByID(_ context.Context, id uint64) (*entities.Address, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

// --- пользователи ---

type memUserRepo struct{ store *memStore }

func (r memUserRepo) CreateInTx(_ context.Context, _ pgx.Tx, user *entities.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return apperrors.ErrAlreadyExists
		}
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) FindUserByID(_ context.Context, id uint64) (*entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r memUserRepo) FindUserByIDInTx(ctx context.Context, _ pgx.Tx, id uint64) (*entities.User, error) {
	return r.FindUserByID(ctx, id)
}

func (r memUserRepo) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r memUserRepo) FindByRole(_ context.Context, role string) ([]entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUserRepo) GetUsers(ctx context.Context) ([]entities.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- статусы менеджеров ---

type memStatusRepo struct{ store *memStore }

func (r memStatusRepo) EnsureInTx(_ context.Context, _ pgx.Tx, userID uint64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[userID]; !ok {
		s.statuses[userID] = entities.ManagerStatus{UserID: userID, Status: constants.ManagerFree, UpdatedAt: time.Now()}
	}
	return nil
}

func (r memStatusRepo) LockInTx(ctx context.Context, _ pgx.Tx, userID uint64) (*entities.ManagerStatus, error) {
	return r.FindByUserID(ctx, userID)
}

func (r memStatusRepo) UpdateInTx(_ context.Context, _ pgx.Tx, userID uint64, status string) (*entities.ManagerStatus, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	st.Status = status
	st.UpdatedAt = time.Now()
	s.statuses[userID] = st
	return &st, nil
}

func (r memStatusRepo) FindByUserID(_ context.Context, userID uint64) (*entities.ManagerStatus, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &st, nil
}

func (r memStatusRepo) List(_ context.Context) ([]repositories.ManagerStatusItem, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repositories.ManagerStatusItem, 0, len(s.statuses))
	for id, st := range s.statuses {
		out = append(out, repositories.ManagerStatusItem{ManagerStatus: st, Fio: s.users[id].Fio})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// --- черный список ---

type memBlacklistRepo struct{ store *memStore }

func (r memBlacklistRepo) LockIdentityInTx(context.Context, pgx.Tx, string, string) error {
	return nil
}

func (r memBlacklistRepo) FindByIdentity(_ context.Context, _ pgx.Tx, clientName, phone string) (*entities.BlacklistEntry, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.blacklist {
		if e.ClientName == clientName && e.Phone == phone {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r memBlacklistRepo) UpsertInTx(_ context.Context, _ pgx.Tx, clientName, phone, reason string) (*entities.BlacklistEntry, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, e := range s.blacklist {
		if e.ClientName == clientName && e.Phone == phone {
			e.Reason = reason
			e.UpdatedAt = now
			s.blacklist[id] = e
			return &e, nil
		}
	}
	e := entities.BlacklistEntry{ID: s.id(), ClientName: clientName, Phone: phone, Reason: reason, CreatedAt: now, UpdatedAt: now}
	s.blacklist[e.ID] = e
	return &e, nil
}

func (r memBlacklistRepo) FindByID(_ context.Context, id uint64) (*entities.BlacklistEntry, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.blacklist[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r memBlacklistRepo) FindForUpdateInTx(ctx context.Context, _ pgx.Tx, id uint64) (*entities.BlacklistEntry, error) {
	return r.FindByID(ctx, id)
}

func (r memBlacklistRepo) AttachOrderInTx(_ context.Context, _ pgx.Tx, entryID uint64, orderID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.related[entryID] {
		if id == orderID {
			return nil
		}
	}
	s.related[entryID] = append(s.related[entryID], orderID)
	return nil
}

func (r memBlacklistRepo) RelatedOrders(_ context.Context, _ pgx.Tx, entryID uint64) ([]uuid.UUID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID{}, s.related[entryID]...), nil
}

func (r memBlacklistRepo) DeleteInTx(_ context.Context, _ pgx.Tx, id uint64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blacklist[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.blacklist, id)
	delete(s.related, id)
	return nil
}

func (r memBlacklistRepo) GetEntries(_ context.Context, _ types.Filter) ([]entities.BlacklistEntry, uint64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.BlacklistEntry, 0, len(s.blacklist))
	for _, e := range s.blacklist {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

// --- история ---

type memHistoryRepo struct{ store *memStore }

func (r memHistoryRepo) CreateInTx(_ context.Context, _ pgx.Tx, entry *entities.StatusHistory) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return s.historyErr
	}
	entry.ID = s.id()
	entry.CreatedAt = time.Now()
	s.history = append(s.history, *entry)
	return nil
}

func (r memHistoryRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]repositories.StatusHistoryItem, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.StatusHistoryItem
	for _, h := range s.history {
		if h.OrderID != orderID {
			continue
		}
		item := repositories.StatusHistoryItem{StatusHistory: h}
		if h.ActorID != nil {
			if u, ok := s.users[*h.ActorID]; ok {
				item.ActorFio = null.StringFrom(u.Fio)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// --- журнал уведомлений ---

type memLogRepo struct{ store *memStore }

func (r memLogRepo) Create(_ context.Context, entry *entities.NotificationLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.id()
	entry.CreatedAt = time.Now()
	s.logs = append(s.logs, *entry)
	return nil
}

func (r memLogRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]entities.NotificationLog, error) {
	return r.store.logsFor(orderID), nil
}
