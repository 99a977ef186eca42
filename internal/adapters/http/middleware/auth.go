package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jobin-logidots/auth-service/internal/usecase"
	res "github.com/jobin-logidots/auth-service/pkg/http"
)

const claimsKey = "claims"

type AuthMiddleware struct {
	codec usecase.TokenCodec
}

func NewAuthMiddleware(codec usecase.TokenCodec) *AuthMiddleware {
	return &AuthMiddleware{codec: codec}
}

func (m *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := BearerToken(c)
		if !ok {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing token", RequestID(c), nil)
		}
		claims, err := m.codec.ParseAccessToken(token)
		if err != nil {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "invalid token", RequestID(c), nil)
		}
		c.Set(claimsKey, claims)
		return next(c)
	}
}

// Claims returns the access claims stored by Handler; nil outside a
// protected route.
func Claims(c echo.Context) *usecase.AccessClaims {
	claims, _ := c.Get(claimsKey).(*usecase.AccessClaims)
	return claims
}

func BearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func RequestID(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
