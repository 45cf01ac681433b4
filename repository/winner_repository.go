package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WinnerRepository implements winner record data access
type WinnerRepository struct {
	q Queryable
}

// NewWinnerRepository creates a new winner repository outside a transaction
func NewWinnerRepository(db *database.DB) *WinnerRepository {
	return &WinnerRepository{q: db.Pool}
}

func newWinnerRepository(tx Queryable) *WinnerRepository {
	return &WinnerRepository{q: tx}
}

// DeleteByDraw removes all winner records of a draw
func (r *WinnerRepository) DeleteByDraw(ctx context.Context, drawID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM winners WHERE draw_id = $1`, drawID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete winners for draw %d: %w", drawID, err)
	}
	return result.RowsAffected(), nil
}

// CreateBatch inserts winner records in a single round trip and sets their IDs
func (r *WinnerRepository) CreateBatch(ctx context.Context, winners []*entities.WinnerRecord) error {
	if len(winners) == 0 {
		return nil
	}

	query := `
		INSERT INTO winners (draw_id, ticket_line_item_id, invoice_id, client_id, seller_id,
		                     number, kind, tier, rank, unit_amount_cents, quantity,
		                     total_payout_cents, rule_set)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for _, w := range winners {
		batch.Queue(query,
			w.DrawID,
			w.TicketLineItemID,
			w.InvoiceID,
			w.ClientID,
			w.SellerID,
			w.Number,
			w.Kind,
			w.Tier,
			w.Rank,
			w.UnitAmount,
			w.Quantity,
			w.TotalPayout,
			w.RuleSet,
		)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for _, w := range winners {
		if err := results.QueryRow().Scan(&w.ID, &w.CreatedAt); err != nil {
			return fmt.Errorf("failed to create winner for ticket %d: %w", w.TicketLineItemID, err)
		}
	}

	return nil
}

// GetByDraw returns the winners of a draw ordered by seller, client and ID
func (r *WinnerRepository) GetByDraw(ctx context.Context, drawID int64, sellerID *int64) ([]*entities.WinnerRecord, error) {
	query := `
		SELECT id, draw_id, ticket_line_item_id, invoice_id, client_id, seller_id,
		       number, kind, tier, rank, unit_amount_cents, quantity,
		       total_payout_cents, rule_set, created_at
		FROM winners
		WHERE draw_id = $1
		  AND ($2::BIGINT IS NULL OR seller_id = $2)
		ORDER BY seller_id ASC, client_id ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, drawID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var winners []*entities.WinnerRecord
	for rows.Next() {
		var w entities.WinnerRecord
		err := rows.Scan(
			&w.ID,
			&w.DrawID,
			&w.TicketLineItemID,
			&w.InvoiceID,
			&w.ClientID,
			&w.SellerID,
			&w.Number,
			&w.Kind,
			&w.Tier,
			&w.Rank,
			&w.UnitAmount,
			&w.Quantity,
			&w.TotalPayout,
			&w.RuleSet,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}
	return winners, nil
}
