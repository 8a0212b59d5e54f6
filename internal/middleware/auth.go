package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	jwtlib "user_hub/internal/lib/jwt"
	"user_hub/internal/lib/logger/sl"

	"github.com/labstack/echo/v4"
)

// claimsContextKey is where verified access-token claims land on the echo
// context. Handlers read them through ClaimsFromContext.
const claimsContextKey = "user_claims"

// JWTAuth gates protected routes on a bearer access token. It only verifies
// and attaches claims; it never touches the store. Every rejection is a plain
// 401 with a message that leaks nothing about the cause.
func JWTAuth(log *slog.Logger, cfg jwtlib.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
			}

			claims, err := jwtlib.ParseToken(token, cfg)
			if err != nil {
				log.Debug("access token rejected", sl.Err(err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(claimsContextKey, claims)

			return next(c)
		}
	}
}

func ClaimsFromContext(c echo.Context) (*jwtlib.Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*jwtlib.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
