package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"raffler/domain/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// CallerAuth verifies the HS256 bearer token issued by the identity provider
// and stores the resulting entities.Caller on the request context
func CallerAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			}

			claims := jwt.MapClaims{}
			_, err := parser.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			}

			caller, err := callerFromClaims(claims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			}

			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// RequireCapability rejects callers whose role does not grant the capability
func RequireCapability(capability entities.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !callerFrom(c).Can(capability) {
				return c.JSON(http.StatusForbidden, errorResponse{Error: entities.ErrForbidden.Error()})
			}
			return next(c)
		}
	}
}

func callerFromClaims(claims jwt.MapClaims) (entities.Caller, error) {
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return entities.Caller{}, fmt.Errorf("token has no subject")
	}

	role, _ := claims["role"].(string)
	caller := entities.Caller{Subject: subject, Role: entities.Role(role)}

	if caller.Role == entities.RoleSeller {
		sellerID, ok := claimInt64(claims["seller_id"])
		if !ok || sellerID <= 0 {
			return entities.Caller{}, fmt.Errorf("seller token has no seller_id")
		}
		caller.SellerID = sellerID
	}
	return caller, nil
}

// claimInt64 accepts JSON numbers and numeric strings
func claimInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func callerFrom(c echo.Context) entities.Caller {
	caller, _ := c.Get(callerKey).(entities.Caller)
	return caller
}
