package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/beautyshop/backend/internal/models"
	"github.com/beautyshop/backend/internal/tokens"
)

const claimsContextKey = "claims"

type Middleware struct {
	DB        *gorm.DB
	JWTSecret []byte
}

// RequireAuth verifies the bearer token, rejects blocklisted jtis and
// stores the claims in the echo context.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		var count int64
		if err := m.DB.Model(&models.TokenBlocklist{}).Where("jti = ?", claims.ID).Count(&count).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if count > 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked, please login again")
		}

		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

// RequireRoles is a static set-membership check. There is no role
// hierarchy: an endpoint must list every role it accepts.
func (m *Middleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "permission denied")
		}
	}
}

func ClaimsFrom(c echo.Context) (*tokens.AccessClaims, bool) {
	claims, ok := c.Get(claimsContextKey).(*tokens.AccessClaims)
	return claims, ok
}

// MustClaims returns the verified claims or an Unauthorized error when
// the handler is reached without RequireAuth.
func MustClaims(c echo.Context) (*tokens.AccessClaims, uint, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return nil, 0, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
	}
	return claims, userID, nil
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
	}
	return parts[1], nil
}
