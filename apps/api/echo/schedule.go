package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LukaszKielczewski66/fightclub/core/session"
)

type scheduleAPI struct {
	service *session.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, service *session.Service) {
	api := scheduleAPI{service: service}

	sg := g.Group("/schedule", jwt)
	sg.GET("/sessions", api.sessionList)
	sg.POST("/sessions", api.sessionCreate, staffMiddleware)
	sg.GET("/my-sessions", api.trainerSessionList, staffMiddleware)
	sg.GET("/my-bookings", api.bookingList)

	bg := sg.Group("/sessions/:id/booking")
	bg.POST("", api.bookingCreate)
	bg.DELETE("", api.bookingDestroy)
}

// Handlers

func (api *scheduleAPI) sessionList(ctx echo.Context) error {
	rng, err := bindRange(ctx)
	if err != nil {
		return err
	}
	views, err := api.service.List(ctx.Request().Context(), rng)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listResponse{Items: views})
}

func (api *scheduleAPI) sessionCreate(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	data := new(session.NewSession)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	view, err := api.service.Create(ctx.Request().Context(), *data, caller)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *scheduleAPI) trainerSessionList(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	rng, err := bindRange(ctx)
	if err != nil {
		return err
	}
	trainerID := caller.ResolveTrainer(ctx.QueryParam(trainerIDParam))
	views, err := api.service.ListByTrainer(ctx.Request().Context(), trainerID, rng)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listResponse{Items: views})
}

func (api *scheduleAPI) bookingList(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	rng, err := bindRange(ctx)
	if err != nil {
		return err
	}
	views, err := api.service.ListBookings(ctx.Request().Context(), caller.ID, rng)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listResponse{Items: views})
}

func (api *scheduleAPI) bookingCreate(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	view, err := api.service.Enroll(ctx.Request().Context(), ctx.Param("id"), caller.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *scheduleAPI) bookingDestroy(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	view, err := api.service.Unenroll(ctx.Request().Context(), ctx.Param("id"), caller.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}
