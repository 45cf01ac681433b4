package api

import (
	"errors"
	"net/http"

	"raffler/domain/entities"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidWinningNumbers), errors.Is(err, entities.ErrInvalidTicket):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entities.ErrDrawNotFound),
		errors.Is(err, entities.ErrInvoiceNotFound),
		errors.Is(err, entities.ErrSellerNotFound),
		errors.Is(err, entities.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrDrawAlreadyFinalized),
		errors.Is(err, entities.ErrSalesClosed),
		errors.Is(err, entities.ErrSettlementInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("Request failed")
		return c.JSON(status, errorResponse{Error: "internal error"})
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}
