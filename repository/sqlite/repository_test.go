package sqlite

import (
	"context"
	"testing"
	"time"

	"raffler/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRepository(t *testing.T) {
	t.Parallel()
	db := setupTestDatabase(t)
	repo := NewDrawRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("not found", func(t *testing.T) {
		draw, err := repo.GetByIDForUpdate(ctx, 4242)
		require.NoError(t, err)
		assert.Nil(t, draw)
	})

	t.Run("create and finalize", func(t *testing.T) {
		draw := createDraw(t, db, now.Add(-time.Hour))

		got, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.Finalized)
		assert.WithinDuration(t, draw.ScheduledAt, got.ScheduledAt, time.Microsecond)

		got.Finalize(entities.WinningNumbers{First: "1234", Second: "56", Third: "78"}, "cascade-v1", now)
		require.NoError(t, repo.Finalize(ctx, got))

		stored, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.True(t, stored.Finalized)
		numbers, ok := stored.WinningNumbers()
		require.True(t, ok)
		assert.Equal(t, entities.WinningNumbers{First: "1234", Second: "56", Third: "78"}, numbers)
		require.NotNil(t, stored.FinalizedAt)
		assert.WithinDuration(t, now, *stored.FinalizedAt, time.Microsecond)

		finalized, err := repo.ListFinalized(ctx)
		require.NoError(t, err)
		require.Len(t, finalized, 1)
		assert.Equal(t, draw.ID, finalized[0].ID)
	})

	t.Run("finalize unknown draw", func(t *testing.T) {
		draw := &entities.Draw{ID: 9999}
		draw.Finalize(entities.WinningNumbers{First: "1234", Second: "56", Third: "78"}, "cascade-v1", now)
		assert.Error(t, repo.Finalize(ctx, draw))
	})

	t.Run("pending results", func(t *testing.T) {
		past := createDraw(t, db, now.Add(-2*time.Hour))
		future := createDraw(t, db, now.Add(2*time.Hour))

		pending, err := repo.ListPendingResults(ctx, now)
		require.NoError(t, err)
		ids := make([]int64, 0, len(pending))
		for _, d := range pending {
			ids = append(ids, d.ID)
		}
		assert.Contains(t, ids, past.ID)
		assert.NotContains(t, ids, future.ID)
	})
}

func TestInvoiceAndTicketRepositories(t *testing.T) {
	t.Parallel()
	db := setupTestDatabase(t)
	ctx := context.Background()

	seller := createSeller(t, db, "Ana", nil)
	client := createClient(t, db, seller.ID, "Luis")
	draw := createDraw(t, db, time.Now().Add(time.Hour))
	invoice := createInvoice(t, db, draw.ID, client, line("1234", 2), line("56", 4))

	got, err := NewInvoiceRepository(db).GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.Cents(300), got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, seller.ID, got.Items[0].SellerID)

	tickets, err := NewTicketRepository(db).GetByDraw(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "1234", tickets[0].Number)
	assert.Equal(t, entities.TicketKindQuad, tickets[0].Kind)
	assert.Equal(t, client.ID, tickets[1].ClientID)

	require.NoError(t, NewInvoiceRepository(db).Delete(ctx, invoice.ID))
	tickets, err = NewTicketRepository(db).GetByDraw(ctx, draw.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)

	missing, err := NewInvoiceRepository(db).GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWinnerAndReportRepositories(t *testing.T) {
	t.Parallel()
	db := setupTestDatabase(t)
	ctx := context.Background()

	ana := createSeller(t, db, "Ana", int64Ptr(1000))
	beto := createSeller(t, db, "Beto", nil)
	anaClient := createClient(t, db, ana.ID, "a1")
	betoClient := createClient(t, db, beto.ID, "b1")
	draw := createDraw(t, db, time.Now().Add(-time.Hour))
	createInvoice(t, db, draw.ID, anaClient, line("1234", 10))
	createInvoice(t, db, draw.ID, betoClient, line("34", 4))

	tickets, err := NewTicketRepository(db).GetByDraw(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	winners := []*entities.WinnerRecord{
		newWinner(t, draw.ID, tickets[1], "pair-rank1", entities.Units(14)),
		newWinner(t, draw.ID, tickets[0], "exact-rank1", entities.Units(2000)),
	}
	winnerRepo := NewWinnerRepository(db)
	require.NoError(t, winnerRepo.CreateBatch(ctx, winners))
	assert.NotZero(t, winners[0].ID)

	all, err := winnerRepo.GetByDraw(ctx, draw.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ana.ID, all[0].SellerID)
	assert.Equal(t, entities.Units(20000), all[0].TotalPayout)

	own, err := winnerRepo.GetByDraw(ctx, draw.ID, &beto.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "pair-rank1", own[0].Tier)

	reports := NewReportRepository(db)
	sales, err := reports.SalesTotals(ctx, []int64{draw.ID}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []*entities.SellerDrawTotal{
		{SellerID: ana.ID, DrawID: draw.ID, Total: entities.Units(10)},
		{SellerID: beto.ID, DrawID: draw.ID, Total: entities.Units(1)},
	}, sales)

	payouts, err := reports.WinningTotals(ctx, []int64{draw.ID}, &beto.ID)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, entities.Units(56), payouts[0].Total)

	empty, err := reports.SalesTotals(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	removed, err := winnerRepo.DeleteByDraw(ctx, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestSellerAndClientRepositories(t *testing.T) {
	t.Parallel()
	db := setupTestDatabase(t)
	ctx := context.Background()

	createSeller(t, db, "Zoe", nil)
	ana := createSeller(t, db, "Ana", int64Ptr(1250))
	client := createClient(t, db, ana.ID, "Luis")

	sellers, err := NewSellerRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, "Ana", sellers[0].Name)
	require.NotNil(t, sellers[0].CommissionBasisPoints)
	assert.Equal(t, int64(1250), *sellers[0].CommissionBasisPoints)
	assert.Nil(t, sellers[1].CommissionBasisPoints)

	missing, err := NewSellerRepository(db).GetByID(ctx, 777)
	require.NoError(t, err)
	assert.Nil(t, missing)

	got, err := NewClientRepository(db).GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.SellerID)

	_, err = db.Exec(`INSERT INTO sellers (name, commission_bps) VALUES ('bad', 10001)`)
	assert.Error(t, err)
}
