package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// Authentication happens upstream; the gateway forwards the identity in
// these headers. Browsers cannot set headers on a websocket handshake, so
// the query parameters are accepted as well.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	queryActorID   = "actor_id"
	queryActorRole = "actor_role"

	actorContextKey = "actor"
)

// ActorMiddleware resolves the calling actor and rejects anonymous requests.
func ActorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := actorFromRequest(ctx)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, Error{
				Code:    http.StatusUnauthorized,
				Outcome: "unauthorized",
				Message: err.Error(),
			})
		}
		ctx.Set(actorContextKey, actor)
		return next(ctx)
	}
}

func actorFromRequest(ctx echo.Context) (kernel.Actor, error) {
	rawID := ctx.Request().Header.Get(HeaderActorID)
	rawRole := ctx.Request().Header.Get(HeaderActorRole)
	if rawID == "" && rawRole == "" {
		rawID, rawRole = ctx.QueryParam(queryActorID), ctx.QueryParam(queryActorRole)
	}
	if rawID == "" || rawRole == "" {
		return kernel.Actor{}, errors.New("actor identity is missing")
	}

	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return kernel.Actor{}, err
	}
	role, err := kernel.ParseRole(rawRole)
	if err != nil {
		return kernel.Actor{}, err
	}
	return kernel.NewActor(id, role)
}

func actorOf(ctx echo.Context) kernel.Actor {
	actor, _ := ctx.Get(actorContextKey).(kernel.Actor)
	return actor
}
