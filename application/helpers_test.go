package application_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"raffler/application"
	"raffler/database"
	"raffler/domain/entities"
	"raffler/events"
	"raffler/infrastructure"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db        *database.SQLiteDB
	factory   application.UnitOfWorkFactory
	published *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raffler.db")
	require.NoError(t, database.MigrateUp(database.MigrationTarget{Driver: "sqlite", URL: path}))

	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	published := &recordingPublisher{}
	return &testEnv{
		db:        db,
		factory:   infrastructure.NewSQLiteUnitOfWorkFactory(db, published),
		published: published,
	}
}

func (e *testEnv) seller(t *testing.T, name string, bps *int64) entities.Caller {
	t.Helper()
	result, err := e.db.Exec(`INSERT INTO sellers (name, commission_bps) VALUES (?, ?)`, name, bps)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return entities.Caller{Subject: name, Role: entities.RoleSeller, SellerID: id}
}

func (e *testEnv) client(t *testing.T, seller entities.Caller, name string) int64 {
	t.Helper()
	result, err := e.db.Exec(`INSERT INTO clients (seller_id, name) VALUES (?, ?)`, seller.SellerID, name)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func (e *testEnv) draw(t *testing.T, scheduledAt time.Time) int64 {
	t.Helper()
	draw, err := application.NewDrawHandler(e.factory).CreateDraw(context.Background(), scheduledAt)
	require.NoError(t, err)
	return draw.ID
}

func (e *testEnv) sale(t *testing.T, seller entities.Caller, drawID, clientID int64, lines ...entities.SaleLine) *entities.Invoice {
	t.Helper()
	invoice, err := application.NewSalesHandler(e.factory).RecordSale(context.Background(), seller, drawID, clientID, lines)
	require.NoError(t, err)
	return invoice
}

func line(number string, quantity int64) entities.SaleLine {
	return entities.SaleLine{Number: number, Quantity: quantity}
}

func int64Ptr(v int64) *int64 { return &v }

var admin = entities.Caller{Subject: "ops", Role: entities.RoleAdmin}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type())
	}
	return types
}

type recordingMetrics struct {
	mu        sync.Mutex
	durations int
	failures  []string
	pending   []int
}

func (m *recordingMetrics) RecordSettlementDuration(ctx context.Context, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *recordingMetrics) RecordSettlementFailure(ctx context.Context, errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errorType)
}

func (m *recordingMetrics) RecordPendingResults(ctx context.Context, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, count)
}

type busyLocker struct{}

func (busyLocker) Lock(ctx context.Context, drawID int64) (func(), error) {
	return nil, entities.ErrSettlementInProgress
}
