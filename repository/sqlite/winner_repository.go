package sqlite

import (
	"context"
	"fmt"
	"time"

	"raffler/domain/entities"
)

// WinnerRepository implements winner record data access
type WinnerRepository struct {
	q Queryer
}

// NewWinnerRepository creates a winner repository on a handle or transaction
func NewWinnerRepository(q Queryer) *WinnerRepository {
	return &WinnerRepository{q: q}
}

// DeleteByDraw removes all winner records of a draw
func (r *WinnerRepository) DeleteByDraw(ctx context.Context, drawID int64) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM winners WHERE draw_id = ?`, drawID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete winners for draw %d: %w", drawID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete winners for draw %d: %w", drawID, err)
	}
	return affected, nil
}

// CreateBatch inserts winner records and sets their IDs
func (r *WinnerRepository) CreateBatch(ctx context.Context, winners []*entities.WinnerRecord) error {
	query := `
		INSERT INTO winners (draw_id, ticket_line_item_id, invoice_id, client_id, seller_id,
		                     number, kind, tier, rank, unit_amount_cents, quantity,
		                     total_payout_cents, rule_set, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().UTC()
	for _, w := range winners {
		result, err := r.q.ExecContext(ctx, query,
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
			formatTime(createdAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create winner for ticket %d: %w", w.TicketLineItemID, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read winner ID: %w", err)
		}
		w.ID = id
		w.CreatedAt = createdAt
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
		WHERE draw_id = ?
		  AND (? IS NULL OR seller_id = ?)
		ORDER BY seller_id ASC, client_id ASC, id ASC
	`

	var winners []*entities.WinnerRecord
	if err := r.q.SelectContext(ctx, &winners, query, drawID, sellerID, sellerID); err != nil {
		return nil, fmt.Errorf("failed to get winners for draw %d: %w", drawID, err)
	}
	return winners, nil
}
