package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffler/database"
	"raffler/domain/entities"

	"github.com/jackc/pgx/v5"
)

const drawColumns = `id, scheduled_at, finalized, first_prize, second_prize, third_prize,
		       rule_set, finalized_at, created_at`

// DrawRepository implements draw data access
type DrawRepository struct {
	q Queryable
}

// NewDrawRepository creates a new draw repository outside a transaction
func NewDrawRepository(db *database.DB) *DrawRepository {
	return &DrawRepository{q: db.Pool}
}

// newDrawRepository creates a draw repository bound to a transaction
func newDrawRepository(tx Queryable) *DrawRepository {
	return &DrawRepository{q: tx}
}

// GetByID retrieves a draw by its ID
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw by ID %d: %w", id, err)
	}
	return draw, nil
}

// GetByIDForUpdate retrieves a draw by ID with row lock for update
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1 FOR UPDATE`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for update by ID %d: %w", id, err)
	}
	return draw, nil
}

// Create inserts a new unfinalized draw
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	query := `
		INSERT INTO draws (scheduled_at)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, draw.ScheduledAt.UTC()).Scan(&draw.ID, &draw.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

// Finalize stores the winning numbers and the finalized flag in one statement
func (r *DrawRepository) Finalize(ctx context.Context, draw *entities.Draw) error {
	numbers, ok := draw.WinningNumbers()
	if !ok {
		return fmt.Errorf("draw %d has no winning numbers to store", draw.ID)
	}

	query := `
		UPDATE draws
		SET finalized = TRUE,
		    first_prize = $2,
		    second_prize = $3,
		    third_prize = $4,
		    rule_set = $5,
		    finalized_at = $6
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		draw.ID,
		numbers.First,
		numbers.Second,
		numbers.Third,
		draw.RuleSet,
		draw.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize draw %d: %w", draw.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw with ID %d not found", draw.ID)
	}
	return nil
}

// ListFinalized returns finalized draws, most recent first
func (r *DrawRepository) ListFinalized(ctx context.Context) ([]*entities.Draw, error) {
	query := `SELECT ` + drawColumns + `
		FROM draws
		WHERE finalized
		ORDER BY scheduled_at DESC, id DESC`

	return r.list(ctx, "finalized", query)
}

// ListPendingResults returns unfinalized draws scheduled at or before the given time
func (r *DrawRepository) ListPendingResults(ctx context.Context, before time.Time) ([]*entities.Draw, error) {
	query := `SELECT ` + drawColumns + `
		FROM draws
		WHERE NOT finalized
		  AND scheduled_at <= $1
		ORDER BY scheduled_at ASC, id ASC`

	return r.list(ctx, "pending", query, before.UTC())
}

func (r *DrawRepository) list(ctx context.Context, what, query string, args ...any) ([]*entities.Draw, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s draws: %w", what, err)
	}
	defer rows.Close()

	var draws []*entities.Draw
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, draw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draws: %w", err)
	}
	return draws, nil
}

func scanDraw(row pgx.Row) (*entities.Draw, error) {
	var draw entities.Draw
	err := row.Scan(
		&draw.ID,
		&draw.ScheduledAt,
		&draw.Finalized,
		&draw.FirstPrize,
		&draw.SecondPrize,
		&draw.ThirdPrize,
		&draw.RuleSet,
		&draw.FinalizedAt,
		&draw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &draw, nil
}
