package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LukaszKielczewski66/fightclub/core/attendance"
)

type attendanceAPI struct {
	service  *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, service *attendance.Service, validate *validator.Validate) {
	api := attendanceAPI{service: service, validate: validate}

	ag := g.Group("/attendance", jwt, staffMiddleware)
	ag.GET("/active", api.activeList)
	ag.GET("/past", api.pastList)
	ag.GET("/:sessionId", api.detailRetrieve)
	ag.PATCH("/:sessionId", api.detailUpdate)
}

// Handlers

func (api *attendanceAPI) activeList(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	trainerID := caller.ResolveTrainer(ctx.QueryParam(trainerIDParam))
	details, err := api.service.ListActive(ctx.Request().Context(), trainerID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listResponse{Items: details})
}

func (api *attendanceAPI) pastList(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	limit, err := bindLimit(ctx)
	if err != nil {
		return err
	}
	trainerID := caller.ResolveTrainer(ctx.QueryParam(trainerIDParam))
	summaries, err := api.service.ListPast(ctx.Request().Context(), trainerID, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, listResponse{Items: summaries})
}

func (api *attendanceAPI) detailRetrieve(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	details, err := api.service.GetDetails(ctx.Request().Context(), ctx.Param("sessionId"), caller)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *attendanceAPI) detailUpdate(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	data := new(attendance.UpdateRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	details, err := api.service.Update(ctx.Request().Context(), ctx.Param("sessionId"), caller, data.Normalize())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}
