package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/core/period"
)

type periodApi struct {
	svc *content.Service
}

func registerPeriodAPI(g *echo.Group, svc *content.Service) {
	api := periodApi{svc: svc}

	pg := g.Group("/periods")
	pg.GET("/resolve", api.resolve)
}

type resolvedPeriod struct {
	Date string `json:"date"`
	period.Period
	Trimester string `json:"trimester,omitempty"`
}

// resolve maps ?date=YYYY-MM-DD (and optionally ?year=N, the active cycle's otherwise) to its period.
func (api *periodApi) resolve(ctx echo.Context) error {
	if _, err := getContextCaller(ctx); err != nil {
		return err
	}

	date, err := period.ParseDate(ctx.QueryParam("date"))
	if err != nil {
		return err
	}
	var year int
	if y := ctx.QueryParam("year"); y != "" {
		if year, err = strconv.Atoi(y); err != nil || year <= 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "must be a positive integer"})
		}
	}

	p, err := api.svc.ResolvePeriod(ctx.Request().Context(), date, year)
	if err != nil {
		return errors.Wrap(err, "resolving period")
	}
	trimester, _ := period.TrimesterOf(date)

	return respond(ctx, http.StatusOK, "", resolvedPeriod{
		Date:      date.Format(core.DateLayout),
		Period:    p,
		Trimester: trimester,
	})
}
