package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
)

type contentApi struct {
	svc      *content.Service
	validate *validator.Validate
}

func registerContentAPI(g *echo.Group, svc *content.Service, validate *validator.Validate) {
	api := contentApi{svc: svc, validate: validate}

	cg := g.Group("/contents", staffMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/duplicate", api.duplicate)
	cg.DELETE("/:id", api.destroy)
}

// bindOrdering reads `?ordering=field,-other`; a leading "-" sorts descending.
func bindOrdering(ctx echo.Context) []core.DBOrdering {
	val := ctx.QueryParam("ordering")
	if val == "" {
		return nil
	}

	var ordering []core.DBOrdering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		ordering = append(ordering, core.DBOrdering{Field: strings.TrimPrefix(field, "-"), Ascending: !desc})
	}
	return ordering
}

// Handlers

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	item, err := api.svc.Create(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "creating content")
	}
	return respond(ctx, http.StatusCreated, "content created", item)
}

func (api *contentApi) duplicate(ctx echo.Context) error {
	var data content.DuplicateContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DuplicateContent")
	}
	data.SourceID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	item, err := api.svc.Duplicate(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "duplicating content")
	}
	return respond(ctx, http.StatusCreated, "content duplicated", item)
}

func (api *contentApi) query(ctx echo.Context) error {
	var filter content.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	items, err := api.svc.Query(ctx.Request().Context(), caller, filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying contents")
	}
	return respond(ctx, http.StatusOK, "", items)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.Get(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting content")
	}
	return respond(ctx, http.StatusOK, "", item)
}

func (api *contentApi) destroy(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Deactivate(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deactivating content")
	}
	return respond(ctx, http.StatusOK, "content deactivated", nil)
}
