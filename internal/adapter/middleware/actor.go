package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"creator-marketplace/internal/domain/user"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID = "X-Actor-Id"
	actorKey      = "actor"
)

// UserLookup is the slice of user.Repository the actor middleware needs.
type UserLookup interface {
	GetByUserID(ctx context.Context, userID string) (*user.User, error)
}

// Actor resolves X-Actor-Id to a user and stores it on the echo context.
// Identity is asserted by the gateway in front of this service; here we only
// check that the user exists and read its role.
func Actor(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			if id == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			if !reHex32.MatchString(id) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			}
			u, err := users.GetByUserID(c.Request().Context(), id)
			if errors.Is(err, user.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown actor"})
			}
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "actor lookup failed"})
			}
			c.Set(actorKey, user.Actor{UserID: u.UserID, Role: u.Role})
			return next(c)
		}
	}
}

// CurrentActor returns the actor set by Actor, or the zero actor, which every
// capability check rejects.
func CurrentActor(c echo.Context) user.Actor {
	a, _ := c.Get(actorKey).(user.Actor)
	return a
}

// SetActor is for handler tests that skip the middleware.
func SetActor(c echo.Context, a user.Actor) { c.Set(actorKey, a) }
