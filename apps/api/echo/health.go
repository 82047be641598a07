package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core"
)

func registerHealthAPI(g *echo.Group, store core.Store) {
	g.GET("/health", func(ctx echo.Context) error {
		if err := store.HealthCheck(ctx.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable").
				WithInternal(errors.Wrap(err, "store health check"))
		}
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}
