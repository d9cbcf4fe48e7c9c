package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core/roster"
)

type rosterApi struct {
	svc      *roster.Service
	validate *validator.Validate
}

func registerRosterAPI(g *echo.Group, svc *roster.Service, validate *validator.Validate) {
	api := rosterApi{svc: svc, validate: validate}

	sg := g.Group("/subject-courses/:id/assignments")
	sg.POST("", api.assign, adminMiddleware())
	sg.GET("", api.query, staffMiddleware())
	sg.GET("/orphaned", api.orphans, adminMiddleware())

	g.DELETE("/assignments/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *rosterApi) assign(ctx echo.Context) error {
	var data roster.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	data.SubjectCourseID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.Assign(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "assigning student")
	}
	return respond(ctx, http.StatusCreated, "student assigned", a)
}

func (api *rosterApi) query(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	list, err := api.svc.Query(ctx.Request().Context(), caller, ctx.Param("id"), ctx.QueryParam("trimester"))
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return respond(ctx, http.StatusOK, "", list)
}

func (api *rosterApi) orphans(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	list, err := api.svc.FindOrphans(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding orphaned assignments")
	}
	return respond(ctx, http.StatusOK, "", list)
}

func (api *rosterApi) destroy(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Deactivate(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deactivating assignment")
	}
	return respond(ctx, http.StatusOK, "assignment deactivated", nil)
}
