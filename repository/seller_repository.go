package repository

import (
	"context"
	"errors"
	"fmt"

	"raffler/database"
	"raffler/domain/entities"

	"github.com/jackc/pgx/v5"
)

// SellerRepository implements seller account reads
type SellerRepository struct {
	q Queryable
}

// NewSellerRepository creates a new seller repository outside a transaction
func NewSellerRepository(db *database.DB) *SellerRepository {
	return &SellerRepository{q: db.Pool}
}

func newSellerRepository(tx Queryable) *SellerRepository {
	return &SellerRepository{q: tx}
}

// GetByID retrieves a seller by ID
func (r *SellerRepository) GetByID(ctx context.Context, id int64) (*entities.SellerAccount, error) {
	var seller entities.SellerAccount
	err := r.q.QueryRow(ctx,
		`SELECT id, name, commission_bps FROM sellers WHERE id = $1`, id,
	).Scan(&seller.ID, &seller.Name, &seller.CommissionBasisPoints)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seller by ID %d: %w", id, err)
	}
	return &seller, nil
}

// List returns all sellers ordered by name
func (r *SellerRepository) List(ctx context.Context) ([]*entities.SellerAccount, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, commission_bps FROM sellers ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	var sellers []*entities.SellerAccount
	for rows.Next() {
		var seller entities.SellerAccount
		if err := rows.Scan(&seller.ID, &seller.Name, &seller.CommissionBasisPoints); err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers = append(sellers, &seller)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sellers: %w", err)
	}
	return sellers, nil
}

// ClientRepository implements client reads
type ClientRepository struct {
	q Queryable
}

func newClientRepository(tx Queryable) *ClientRepository {
	return &ClientRepository{q: tx}
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*entities.Client, error) {
	var client entities.Client
	err := r.q.QueryRow(ctx,
		`SELECT id, seller_id, name FROM clients WHERE id = $1`, id,
	).Scan(&client.ID, &client.SellerID, &client.Name)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by ID %d: %w", id, err)
	}
	return &client, nil
}
