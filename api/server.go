package api

import (
	"net/http"
	"strconv"

	"raffler/application"
	"raffler/domain/entities"
	"raffler/domain/interfaces"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers are the use cases exposed over HTTP
type Handlers struct {
	Settlement *application.SettlementHandler
	Reports    *application.ReportHandler
	Sales      *application.SalesHandler
}

type server struct {
	handlers Handlers
}

// NewServer builds the echo instance with every route registered
func NewServer(handlers Handlers, jwtSecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &server{handlers: handlers}

	e.GET("/healthz", s.health)

	v1 := e.Group("/v1", CallerAuth(jwtSecret))
	v1.POST("/draws/:id/results", s.settleDraw, RequireCapability(entities.CapFinalizeDraws))
	v1.GET("/draws/:id/winners", s.listWinners)
	v1.GET("/commissions", s.commissionReport)
	v1.POST("/sales", s.recordSale, RequireCapability(entities.CapRecordSales))
	v1.DELETE("/sales/:id", s.deleteSale, RequireCapability(entities.CapRecordSales))

	return e
}

func (s *server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *server) settleDraw(c echo.Context) error {
	drawID, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid draw id")
	}

	var body settleRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	numbers := entities.WinningNumbers{First: body.FirstPrize, Second: body.SecondPrize, Third: body.ThirdPrize}
	result, err := s.handlers.Settlement.SettleDraw(c.Request().Context(), drawID, numbers, interfaces.SettleOptions{Recompute: body.Recompute})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

func (s *server) listWinners(c echo.Context) error {
	drawID, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid draw id")
	}

	winners, err := s.handlers.Reports.Winners(c.Request().Context(), callerFrom(c), drawID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, winnersResponse{DrawID: drawID, Winners: toWinnerDTOs(winners)})
}

func (s *server) commissionReport(c echo.Context) error {
	sellerID, ok := queryID(c, "seller_id")
	if !ok {
		return badRequest(c, "invalid seller_id")
	}
	drawID, ok := queryID(c, "draw_id")
	if !ok {
		return badRequest(c, "invalid draw_id")
	}

	rows, err := s.handlers.Reports.CommissionReport(c.Request().Context(), callerFrom(c), sellerID, drawID)
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []*entities.CommissionReportRow{}
	}
	return c.JSON(http.StatusOK, reportResponse{Rows: rows})
}

func (s *server) recordSale(c echo.Context) error {
	var body saleRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.DrawID <= 0 || body.ClientID <= 0 {
		return badRequest(c, "draw_id and client_id are required")
	}

	invoice, err := s.handlers.Sales.RecordSale(c.Request().Context(), callerFrom(c), body.DrawID, body.ClientID, body.Items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toInvoiceResponse(invoice))
}

func (s *server) deleteSale(c echo.Context) error {
	invoiceID, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid invoice id")
	}

	if err := s.handlers.Sales.DeleteSale(c.Request().Context(), callerFrom(c), invoiceID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional positive id; an absent parameter yields nil
func queryID(c echo.Context, name string) (*int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
