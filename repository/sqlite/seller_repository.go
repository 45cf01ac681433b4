package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"raffler/domain/entities"
)

// SellerRepository implements seller account reads
type SellerRepository struct {
	q Queryer
}

// NewSellerRepository creates a seller repository on a handle or transaction
func NewSellerRepository(q Queryer) *SellerRepository {
	return &SellerRepository{q: q}
}

// GetByID retrieves a seller by ID
func (r *SellerRepository) GetByID(ctx context.Context, id int64) (*entities.SellerAccount, error) {
	var seller entities.SellerAccount
	err := r.q.GetContext(ctx, &seller, `SELECT id, name, commission_bps FROM sellers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seller by ID %d: %w", id, err)
	}
	return &seller, nil
}

// List returns all sellers ordered by name
func (r *SellerRepository) List(ctx context.Context) ([]*entities.SellerAccount, error) {
	var sellers []*entities.SellerAccount
	if err := r.q.SelectContext(ctx, &sellers, `SELECT id, name, commission_bps FROM sellers ORDER BY name ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	return sellers, nil
}

// ClientRepository implements client reads
type ClientRepository struct {
	q Queryer
}

// NewClientRepository creates a client repository on a handle or transaction
func NewClientRepository(q Queryer) *ClientRepository {
	return &ClientRepository{q: q}
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*entities.Client, error) {
	var client entities.Client
	err := r.q.GetContext(ctx, &client, `SELECT id, seller_id, name FROM clients WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by ID %d: %w", id, err)
	}
	return &client, nil
}
