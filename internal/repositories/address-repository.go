package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
)

type AddressRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, address *entities.Address) error
	FindByID(ctx context.Context, id uint64) (*entities.Address, error)
}

type AddressRepository struct {
	storage *pgxpool.Pool
}

func NewAddressRepository(storage *pgxpool.Pool) AddressRepositoryInterface {
	return &AddressRepository{storage: storage}
}

func (r *AddressRepository) CreateInTx(ctx context.Context, tx pgx.Tx, address *entities.Address) error {
	query := `
		INSERT INTO addresses (city, street, house, building, apartment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, query,
		address.City, address.Street, address.House, address.Building, address.Apartment,
	).Scan(&address.ID, &address.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания адреса: %w", mapPgError(err))
	}
	return nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id uint64) (*entities.Address, error) {
	query := `SELECT id, city, street, house, building, apartment, created_at FROM addresses WHERE id = $1`
	var a entities.Address
	err := r.storage.QueryRow(ctx, query, id).Scan(&a.ID, &a.City, &a.Street, &a.House, &a.Building, &a.Apartment, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("адрес %d", id))
	}
	return &a, nil
}
