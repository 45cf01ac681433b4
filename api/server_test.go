package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"raffler/application"
	"raffler/database"
	"raffler/domain/entities"
	"raffler/domain/prizes"
	"raffler/infrastructure"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fixture struct {
	e       *echo.Echo
	db      *database.SQLiteDB
	factory application.UnitOfWorkFactory

	sellerID int64
	clientID int64
	drawID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raffler.db")
	require.NoError(t, database.MigrateUp(database.MigrationTarget{Driver: "sqlite", URL: path}))
	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	factory := infrastructure.NewSQLiteUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	handlers := Handlers{
		Settlement: application.NewSettlementHandler(factory, infrastructure.NewLocalDrawLocker(time.Second),
			prizes.NewRegistry(), prizes.DefaultRuleSetID, nil),
		Reports: application.NewReportHandler(factory),
		Sales:   application.NewSalesHandler(factory),
	}

	f := &fixture{e: NewServer(handlers, testSecret), db: db, factory: factory}

	res, err := db.Exec(`INSERT INTO sellers (name, commission_bps) VALUES ('Ana', 1000)`)
	require.NoError(t, err)
	f.sellerID, err = res.LastInsertId()
	require.NoError(t, err)

	res, err = db.Exec(`INSERT INTO clients (seller_id, name) VALUES (?, 'Luis')`, f.sellerID)
	require.NoError(t, err)
	f.clientID, err = res.LastInsertId()
	require.NoError(t, err)

	draw, err := application.NewDrawHandler(factory).CreateDraw(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	f.drawID = draw.ID
	return f
}

func token(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminToken(t *testing.T) string {
	return token(t, testSecret, jwt.MapClaims{"sub": "ops", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
}

func sellerToken(t *testing.T, sellerID int64) string {
	return token(t, testSecret, jwt.MapClaims{"sub": "ana", "role": "seller", "seller_id": sellerID})
}

func (f *fixture) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		bearer string
	}{
		{name: "missing token", bearer: ""},
		{name: "wrong secret", bearer: token(t, "other", jwt.MapClaims{"sub": "ops", "role": "admin"})},
		{name: "expired", bearer: token(t, testSecret, jwt.MapClaims{"sub": "ops", "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()})},
		{name: "no subject", bearer: token(t, testSecret, jwt.MapClaims{"role": "admin"})},
		{name: "seller without seller_id", bearer: token(t, testSecret, jwt.MapClaims{"sub": "ana", "role": "seller"})},
		{name: "garbage", bearer: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/v1/commissions", tt.bearer, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSettleAndReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	seller := sellerToken(t, f.sellerID)

	sale := `{"draw_id":` + itoa(f.drawID) + `,"client_id":` + itoa(f.clientID) +
		`,"items":[{"number":"1234","quantity":1},{"number":"1239","quantity":2},{"number":"34","quantity":5}]}`
	rec := f.do(t, http.MethodPost, "/v1/sales", seller, sale)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var invoice invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))
	assert.Equal(t, int64(425), invoice.TotalCents)
	assert.Len(t, invoice.Items, 3)

	results := "/v1/draws/" + itoa(f.drawID) + "/results"
	numbers := `{"first_prize":"1234","second_prize":"56","third_prize":"78"}`

	t.Run("sellers cannot settle", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, results, seller, numbers)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed numbers", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, results, adminToken(t), `{"first_prize":"12a4","second_prize":"56","third_prize":"78"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("settle", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, results, adminToken(t), numbers)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp settlementResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.WinnerCount)
		assert.Equal(t, int64(217000), resp.TotalPayoutCents)
		assert.Equal(t, prizes.DefaultRuleSetID, resp.RuleSet)
	})

	t.Run("settle again conflicts", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, results, adminToken(t), numbers)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown draw", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/draws/999/results", adminToken(t), numbers)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("winners", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/draws/"+itoa(f.drawID)+"/winners", seller, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp winnersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Winners, 3)
		assert.Equal(t, "exact-rank1", resp.Winners[0].Tier)
	})

	t.Run("seller report", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/commissions", seller, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Rows []struct {
				SellerID         int64 `json:"seller_id"`
				GrossSales       int64 `json:"gross_sales"`
				TotalWinnings    int64 `json:"total_winnings"`
				CommissionAmount int64 `json:"commission_amount"`
				Balance          int64 `json:"balance"`
			} `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 1)
		row := resp.Rows[0]
		assert.Equal(t, int64(425), row.GrossSales)
		assert.Equal(t, int64(43), row.CommissionAmount)
		assert.Equal(t, row.GrossSales-row.CommissionAmount-row.TotalWinnings, row.Balance)
	})

	t.Run("seller asking for another seller", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/commissions?seller_id="+itoa(f.sellerID+1), seller, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad query", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/commissions?draw_id=abc", adminToken(t), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sales closed after settlement", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/v1/sales/"+itoa(invoice.ID), seller, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestSales(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	seller := sellerToken(t, f.sellerID)

	rec := f.do(t, http.MethodPost, "/v1/sales", seller, `{"draw_id":`+itoa(f.drawID)+`,"client_id":`+itoa(f.clientID)+`,"items":[{"number":"123","quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/sales", seller, `{"draw_id":`+itoa(f.drawID)+`,"client_id":`+itoa(f.clientID)+`,"items":[{"number":"1234","quantity":100000000000000}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/sales", adminToken(t), `{"draw_id":`+itoa(f.drawID)+`,"client_id":`+itoa(f.clientID)+`,"items":[{"number":"12","quantity":1}]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/sales", seller, `{"client_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/sales", seller, `{"draw_id":`+itoa(f.drawID)+`,"client_id":`+itoa(f.clientID)+`,"items":[{"number":"12","quantity":4}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var invoice invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))
	assert.Equal(t, int64(100), invoice.TotalCents)

	rec = f.do(t, http.MethodDelete, "/v1/sales/"+itoa(invoice.ID), seller, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/sales/"+itoa(invoice.ID), seller, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/sales/abc", seller, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{entities.ErrInvalidWinningNumbers, http.StatusBadRequest},
		{entities.ErrInvalidTicket, http.StatusBadRequest},
		{entities.ErrForbidden, http.StatusForbidden},
		{entities.ErrDrawNotFound, http.StatusNotFound},
		{entities.ErrClientNotFound, http.StatusNotFound},
		{entities.ErrDrawAlreadyFinalized, http.StatusConflict},
		{entities.ErrSalesClosed, http.StatusConflict},
		{entities.ErrSettlementInProgress, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestClaimInt64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     interface{}
		want   int64
		wantOK bool
	}{
		{float64(7), 7, true},
		{"12", 12, true},
		{7.5, 0, false},
		{"x", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := claimInt64(tt.in)
		assert.Equal(t, tt.wantOK, ok)
		if tt.wantOK {
			assert.Equal(t, tt.want, got)
		}
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
