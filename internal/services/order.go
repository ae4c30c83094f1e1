package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	"service-crm/pkg/config"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/metrics"
	"service-crm/pkg/types"
	"service-crm/pkg/utils"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, actorID uint64, data dto.CreateOrderDTO) (*entities.Order, error)
	AssignOrder(ctx context.Context, orderID uuid.UUID, managerID, actorID uint64) (*entities.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID uint64, comment string) (*entities.Order, error)
	AddToBlacklist(ctx context.Context, orderID uuid.UUID, reason string, actorID uint64) (*entities.BlacklistEntry, error)
	BlacklistClient(ctx context.Context, clientName, phone, reason string, actorID uint64) (*entities.BlacklistEntry, error)
	RemoveFromBlacklist(ctx context.Context, entryID, actorID uint64) error

	FindOrder(ctx context.Context, id uuid.UUID, scope OrderScope) (*dto.OrderResponseDTO, error)
	GetOrders(ctx context.Context, filter types.Filter, scope OrderScope) ([]dto.OrderResponseDTO, uint64, error)
	GetHistory(ctx context.Context, id uuid.UUID, scope OrderScope) ([]repositories.StatusHistoryItem, error)
	GetNotifications(ctx context.Context, id uuid.UUID) ([]entities.NotificationLog, error)

	// Drain ждет уведомления, отправка которых уже начата.
	Drain(ctx context.Context) error
}

type OrderService struct {
	txManager    repositories.TxManagerInterface
	orderRepo    repositories.OrderRepositoryInterface
	addressRepo  repositories.AddressRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	history      StatusHistoryServiceInterface
	managers     ManagerStatusServiceInterface
	blacklist    BlacklistServiceInterface
	notifier     NotificationServiceInterface
	notifyConfig config.NotificationConfig
	logger       *zap.Logger

	inflight sync.WaitGroup
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	addressRepo repositories.AddressRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	history StatusHistoryServiceInterface,
	managers ManagerStatusServiceInterface,
	blacklist BlacklistServiceInterface,
	notifier NotificationServiceInterface,
	notifyConfig config.NotificationConfig,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		addressRepo:  addressRepo,
		userRepo:     userRepo,
		history:      history,
		managers:     managers,
		blacklist:    blacklist,
		notifier:     notifier,
		notifyConfig: notifyConfig,
		logger:       logger,
	}
}

// notice - уведомление, отправляемое после коммита.
type notice struct {
	recipient   *entities.User
	messageType string
	text        string
	orderID     uuid.UUID
}

func (s *OrderService) CreateOrder(ctx context.Context, actorID uint64, data dto.CreateOrderDTO) (*entities.Order, error) {
	phone, err := utils.NormalizePhone(data.Phone)
	if err != nil {
		return nil, err
	}
	clientName := utils.NormalizeClientName(data.ClientName)
	if clientName == "" {
		return nil, apperrors.NewInvalidInputError("ФИО клиента обязательно")
	}
	address, err := addressFromDTO(data.Address)
	if err != nil {
		return nil, err
	}

	order := &entities.Order{
		ID:         uuid.New(),
		ClientName: clientName,
		Phone:      phone,
		Comment:    strings.TrimSpace(data.Comment),
		Status:     constants.StatusUnassigned,
		CreatedBy:  &actorID,
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.blacklist.LockIdentity(ctx, tx, clientName, phone); err != nil {
			return err
		}
		entry, err := s.blacklist.Lookup(ctx, tx, clientName, phone)
		if err != nil {
			return err
		}
		order.IsBlacklisted = entry != nil

		if err := s.addressRepo.CreateInTx(ctx, tx, address); err != nil {
			return err
		}
		order.AddressID = address.ID

		if err := s.orderRepo.CreateInTx(ctx, tx, order); err != nil {
			return err
		}
		_, err = s.history.Append(ctx, tx, order.ID, constants.StatusUnassigned, &actorID, constants.HistoryCommentCreated)
		return err
	})
	if err != nil {
		return nil, s.failed("create", err)
	}

	metrics.OrderTransitions.WithLabelValues(constants.StatusUnassigned).Inc()
	s.logger.Info("заявка создана",
		zap.String("order_id", order.ID.String()),
		zap.Uint64("actor_id", actorID),
		zap.Bool("is_blacklisted", order.IsBlacklisted),
	)

	if s.notifyConfig.NotifyOnCreate {
		text := newOrderMessage(order, address.String())
		s.dispatch(ctx, s.coordinatorNotices(ctx, order.ID, constants.NotificationNew, text))
	}
	return order, nil
}

func addressFromDTO(a dto.AddressDTO) (*entities.Address, error) {
	city, street, house := strings.TrimSpace(a.City), strings.TrimSpace(a.Street), strings.TrimSpace(a.House)
	if city == "" || street == "" || house == "" {
		return nil, apperrors.NewInvalidInputError("адрес: город, улица и дом обязательны")
	}
	address := &entities.Address{City: city, Street: street, House: house}
	if v := strings.TrimSpace(a.Building.String); a.Building.Valid && v != "" {
		address.Building = &v
	}
	if v := strings.TrimSpace(a.Apartment.String); a.Apartment.Valid && v != "" {
		address.Apartment = &v
	}
	return address, nil
}

func (s *OrderService) AssignOrder(ctx context.Context, orderID uuid.UUID, managerID, actorID uint64) (*entities.Order, error) {
	var (
		order   *entities.Order
		manager *entities.User
	)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.FindForUpdateInTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if constants.IsFinalStatus(order.Status) {
			return fmt.Errorf("%w: заявка в статусе %s", apperrors.ErrInvalidTransition, order.Status)
		}

		manager, err = s.userRepo.FindUserByIDInTx(ctx, tx, managerID)
		if err != nil {
			return err
		}
		if manager.Role != constants.RoleManager {
			return fmt.Errorf("%w: пользователь %d", apperrors.ErrNotManager, managerID)
		}

		lockIDs := []uint64{managerID}
		previousID := order.AssignedManagerID
		if previousID != nil {
			lockIDs = append(lockIDs, *previousID)
		}
		statuses, err := s.managers.LockInTx(ctx, tx, lockIDs...)
		if err != nil {
			return err
		}
		if statuses[managerID].Status != constants.ManagerFree {
			return fmt.Errorf("%w: менеджер %d в статусе %s", apperrors.ErrManagerUnavailable, managerID, statuses[managerID].Status)
		}
		active, err := s.orderRepo.CountActiveByManagerInTx(ctx, tx, managerID, order.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: у менеджера %d уже есть активная заявка", apperrors.ErrManagerUnavailable, managerID)
		}

		order.Status = constants.StatusAssigned
		order.AssignedManagerID = &managerID
		if err := s.orderRepo.UpdateStateInTx(ctx, tx, order); err != nil {
			return err
		}
		if _, err := s.managers.SetStatusInTx(ctx, tx, managerID, constants.ManagerBusy); err != nil {
			return err
		}

		comment := assignedHistoryComment(manager)
		if previousID != nil {
			if _, err := s.managers.ReleaseInTx(ctx, tx, *previousID, order.ID); err != nil {
				return err
			}
			previous, err := s.userRepo.FindUserByIDInTx(ctx, tx, *previousID)
			if err != nil {
				return err
			}
			comment = reassignedHistoryComment(previous, manager)
		}

		_, err = s.history.Append(ctx, tx, order.ID, constants.StatusAssigned, &actorID, comment)
		return err
	})
	if err != nil {
		return nil, s.failed("assign", err)
	}

	metrics.OrderTransitions.WithLabelValues(constants.StatusAssigned).Inc()
	s.logger.Info("заявка назначена",
		zap.String("order_id", order.ID.String()),
		zap.Uint64("manager_id", managerID),
		zap.Uint64("actor_id", actorID),
	)

	text := assignedMessage(order, s.addressLine(ctx, order.AddressID))
	s.dispatch(ctx, []notice{{recipient: manager, messageType: constants.NotificationAssigned, text: text, orderID: order.ID}})
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID uint64, comment string) (*entities.Order, error) {
	if !constants.IsKnownStatus(newStatus) {
		return nil, fmt.Errorf("%w: неизвестный статус %q", apperrors.ErrInvalidTransition, newStatus)
	}
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)

	var (
		order   *entities.Order
		manager *entities.User
	)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.FindForUpdateInTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if constants.IsFinalStatus(order.Status) || !constants.CanTransition(order.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, order.Status, newStatus)
		}
		if actor.Role == constants.RoleManager &&
			(order.AssignedManagerID == nil || *order.AssignedManagerID != actor.ID) {
			return fmt.Errorf("%w: заявка назначена другому менеджеру", apperrors.ErrForbidden)
		}

		managerID := order.AssignedManagerID
		terminal := constants.IsFinalStatus(newStatus)
		if terminal && managerID != nil {
			if _, err := s.managers.LockInTx(ctx, tx, *managerID); err != nil {
				return err
			}
			manager, err = s.userRepo.FindUserByIDInTx(ctx, tx, *managerID)
			if err != nil {
				return err
			}
			order.AssignedManagerID = nil
		}

		order.Status = newStatus
		if err := s.orderRepo.UpdateStateInTx(ctx, tx, order); err != nil {
			return err
		}
		if terminal && managerID != nil {
			if _, err := s.managers.ReleaseInTx(ctx, tx, *managerID, order.ID); err != nil {
				return err
			}
		}

		_, err = s.history.Append(ctx, tx, order.ID, newStatus, &actorID, comment)
		return err
	})
	if err != nil {
		return nil, s.failed("update_status", err)
	}

	metrics.OrderTransitions.WithLabelValues(newStatus).Inc()
	fields := []zap.Field{
		zap.String("order_id", order.ID.String()),
		zap.String("status", newStatus),
		zap.Uint64("actor_id", actorID),
	}
	if manager != nil {
		fields = append(fields, zap.Uint64("manager_id", manager.ID))
	}
	s.logger.Info("статус заявки изменен", fields...)

	switch newStatus {
	case constants.StatusCompleted:
		managerName := ""
		if manager != nil {
			managerName = manager.Fio
		}
		text := completedMessage(order, managerName, s.addressLine(ctx, order.AddressID))
		s.dispatch(ctx, s.coordinatorNotices(ctx, order.ID, constants.NotificationCompleted, text))
	case constants.StatusRejected:
		if s.notifyConfig.NotifyOnCancel {
			text := canceledMessage(order, comment, s.addressLine(ctx, order.AddressID))
			notices := s.coordinatorNotices(ctx, order.ID, constants.NotificationCanceled, text)
			if manager != nil {
				notices = append([]notice{{recipient: manager, messageType: constants.NotificationCanceled, text: text, orderID: order.ID}}, notices...)
			}
			s.dispatch(ctx, notices)
		}
	}
	return order, nil
}

func (s *OrderService) AddToBlacklist(ctx context.Context, orderID uuid.UUID, reason string, actorID uint64) (*entities.BlacklistEntry, error) {
	// ФИО и телефон заявки не меняются, поэтому читаем без блокировки:
	// строки заявок блокируются ниже, после блокировки клиента.
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	entry, affected, err := s.blacklistIdentity(ctx, order.ClientName, order.Phone, strings.TrimSpace(reason), &order.ID)
	if err != nil {
		return nil, s.failed("blacklist", err)
	}
	s.logger.Info("клиент добавлен в черный список",
		zap.Uint64("entry_id", entry.ID),
		zap.String("order_id", orderID.String()),
		zap.Int("affected_orders", affected),
		zap.Uint64("actor_id", actorID),
	)
	return entry, nil
}

func (s *OrderService) BlacklistClient(ctx context.Context, clientName, phone, reason string, actorID uint64) (*entities.BlacklistEntry, error) {
	normalizedPhone, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	name := utils.NormalizeClientName(clientName)
	if name == "" {
		return nil, apperrors.NewInvalidInputError("ФИО клиента обязательно")
	}
	entry, affected, err := s.blacklistIdentity(ctx, name, normalizedPhone, strings.TrimSpace(reason), nil)
	if err != nil {
		return nil, s.failed("blacklist", err)
	}
	s.logger.Info("клиент добавлен в черный список",
		zap.Uint64("entry_id", entry.ID),
		zap.Int("affected_orders", affected),
		zap.Uint64("actor_id", actorID),
	)
	return entry, nil
}

// blacklistIdentity создает или обновляет запись и выставляет флаг всем заявкам клиента в одной транзакции.
func (s *OrderService) blacklistIdentity(ctx context.Context, clientName, phone, reason string, orderID *uuid.UUID) (*entities.BlacklistEntry, int, error) {
	var (
		entry    *entities.BlacklistEntry
		affected int
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.blacklist.LockIdentity(ctx, tx, clientName, phone); err != nil {
			return err
		}
		var err error
		entry, err = s.blacklist.Upsert(ctx, tx, clientName, phone, reason)
		if err != nil {
			return err
		}

		ids, err := s.orderRepo.LockIDsByIdentityInTx(ctx, tx, clientName, phone)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := s.orderRepo.SetBlacklistedInTx(ctx, tx, id, true); err != nil {
				return err
			}
		}
		affected = len(ids)

		if orderID != nil {
			if err := s.blacklist.AttachOrder(ctx, tx, entry.ID, *orderID); err != nil {
				return err
			}
		}
		entry.RelatedOrders, err = s.blacklist.RelatedOrders(ctx, tx, entry.ID)
		return err
	})
	return entry, affected, err
}

func (s *OrderService) RemoveFromBlacklist(ctx context.Context, entryID, actorID uint64) error {
	found, err := s.blacklist.FindEntry(ctx, entryID)
	if err != nil {
		return err
	}

	var affected int
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.blacklist.LockIdentity(ctx, tx, found.ClientName, found.Phone); err != nil {
			return err
		}
		if _, err := s.blacklist.LockEntry(ctx, tx, entryID); err != nil {
			return err
		}

		ids, err := s.orderRepo.LockIDsByIdentityInTx(ctx, tx, found.ClientName, found.Phone)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := s.orderRepo.SetBlacklistedInTx(ctx, tx, id, false); err != nil {
				return err
			}
		}
		affected = len(ids)
		return s.blacklist.Delete(ctx, tx, entryID)
	})
	if err != nil {
		return s.failed("unblacklist", err)
	}

	s.logger.Info("клиент удален из черного списка",
		zap.Uint64("entry_id", entryID),
		zap.String("client_name", found.ClientName),
		zap.String("phone", found.Phone),
		zap.Int("affected_orders", affected),
		zap.Uint64("actor_id", actorID),
	)
	return nil
}

func (s *OrderService) FindOrder(ctx context.Context, id uuid.UUID, scope OrderScope) (*dto.OrderResponseDTO, error) {
	order, err := s.findVisible(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	res := orderToDTO(order)
	res.Address = s.addressLine(ctx, order.AddressID)
	return &res, nil
}

func (s *OrderService) GetOrders(ctx context.Context, filter types.Filter, scope OrderScope) ([]dto.OrderResponseDTO, uint64, error) {
	orders, total, err := s.orderRepo.GetOrders(ctx, scope.apply(filter))
	if err != nil {
		return nil, 0, err
	}
	list := make([]dto.OrderResponseDTO, 0, len(orders))
	for i := range orders {
		list = append(list, orderToDTO(&orders[i]))
	}
	return list, total, nil
}

func (s *OrderService) GetHistory(ctx context.Context, id uuid.UUID, scope OrderScope) ([]repositories.StatusHistoryItem, error) {
	if _, err := s.findVisible(ctx, id, scope); err != nil {
		return nil, err
	}
	return s.history.ListFor(ctx, id)
}

// findVisible отвечает NotFound и на чужую заявку, чтобы не раскрывать ее существование.
func (s *OrderService) findVisible(ctx context.Context, id uuid.UUID, scope OrderScope) (*entities.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.allows(order) {
		return nil, fmt.Errorf("%w: заявка %s", apperrors.ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) GetNotifications(ctx context.Context, id uuid.UUID) ([]entities.NotificationLog, error) {
	if _, err := s.orderRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.notifier.GetLog(ctx, id)
}

func orderToDTO(o *entities.Order) dto.OrderResponseDTO {
	res := dto.OrderResponseDTO{
		ID:            o.ID.String(),
		ClientName:    o.ClientName,
		Phone:         o.Phone,
		AddressID:     o.AddressID,
		Comment:       o.Comment,
		Status:        o.Status,
		StatusName:    constants.StatusLabel(o.Status),
		IsBlacklisted: o.IsBlacklisted,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
	if o.AssignedManagerID != nil {
		res.AssignedManagerID = null.Uint64From(*o.AssignedManagerID)
	}
	return res
}

// addressLine возвращает адрес строкой; ошибка чтения не мешает уведомлению.
func (s *OrderService) addressLine(ctx context.Context, addressID uint64) string {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		s.logger.Warn("не удалось получить адрес заявки", zap.Uint64("address_id", addressID), zap.Error(err))
		return "-"
	}
	return address.String()
}

func (s *OrderService) coordinatorNotices(ctx context.Context, orderID uuid.UUID, messageType, text string) []notice {
	coordinators, err := s.userRepo.FindByRole(ctx, constants.RoleCoordinator)
	if err != nil {
		s.logger.Error("не удалось получить координаторов", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil
	}
	notices := make([]notice, 0, len(coordinators))
	for i := range coordinators {
		notices = append(notices, notice{recipient: &coordinators[i], messageType: messageType, text: text, orderID: orderID})
	}
	return notices
}

// dispatch рассылает уведомления в фоне после коммита и сразу возвращает управление.
// Результат только журналируется.
func (s *OrderService) dispatch(ctx context.Context, notices []notice) {
	if len(notices) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		var g errgroup.Group
		g.SetLimit(4)
		for _, n := range notices {
			g.Go(func() error {
				s.notifier.Notify(ctx, n.recipient, n.messageType, n.text, n.orderID)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (s *OrderService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OrderService) failed(operation string, err error) error {
	if errors.Is(err, apperrors.ErrConcurrentModification) {
		metrics.OrderConflicts.WithLabelValues(operation).Inc()
	}
	return err
}
