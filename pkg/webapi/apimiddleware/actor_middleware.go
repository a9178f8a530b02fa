package apimiddleware

import (
	"fmt"
	"net/http"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ActorKey is the echo context key holding the *arsipmodel.User of a request.
const ActorKey = "user"

type GetUserByAPITokenFN func(string) (*arsipmodel.User, error)

type ActorAuthConfig struct {
	Skipper           middleware.Skipper
	Keyname           string
	GetUserByAPIToken GetUserByAPITokenFN
}

// ActorAuth resolves the acting user from the Keyname header or query
// parameter. Requests without a known token are rejected.
func ActorAuth(config ActorAuthConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = middleware.DefaultSkipper
	}

	if config.Keyname == "" {
		config.Keyname = "apikey"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			value, err := getAPITokenFromRequest(config.Keyname, c)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}

			user, err := config.GetUserByAPIToken(value)
			switch {
			case err != nil:
				return echo.ErrUnauthorized
			case user == nil:
				return echo.ErrUnauthorized
			default:
				c.Set(ActorKey, user)
				return next(c)
			}
		}
	}
}

// Actor returns the user ActorAuth stored on c.
func Actor(c echo.Context) (*arsipmodel.User, bool) {
	user, ok := c.Get(ActorKey).(*arsipmodel.User)
	return user, ok && user != nil
}

func getAPITokenFromRequest(key string, c echo.Context) (string, error) {
	if value := c.Request().Header.Get(key); value != "" {
		return value, nil
	}

	if value := c.QueryParam(key); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("no apikey '%s' as query param or header", key)
}
