package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/academic"
)

var errNoPeriod = echo.NewHTTPError(http.StatusNotFound, "no period in session")

type academicApi struct {
	*resourceAPI
	svc *academic.Service
}

func registerAcademicAPI(g *echo.Group, rapi *resourceAPI, svc *academic.Service) {
	api := academicApi{resourceAPI: rapi, svc: svc}
	staff := staffMiddleware()

	registerResource(g, "/assignments", svc.Assignments, staff)
	registerResource(g, "/events", svc.Events, staff)
	polls := registerResource(g, "/polls", svc.Polls, staff)
	polls.PATCH("/:id/vote", api.vote)
	registerResource(g, "/skills", svc.Skills)
	registerResource(g, "/mentoring", svc.Mentoring, staff)
	registerResource(g, "/resources", svc.Uploads, staff)
	registerResource(g, "/notifications", svc.Notifications, staff)
	registerResource(g, "/attendance", svc.Attendance, staff)

	// static routes win over /:id
	g.GET("/timetable/current", api.currentPeriod)
	registerResource(g, "/timetable", svc.Timetable, adminMiddleware())
	g.GET("/analytics/summary", api.summary, staff)
	registerResource(g, "/analytics", svc.Analytics, staff)
}

type VoteRequest struct {
	Option *int `json:"option" validate:"required"`
}

func (api *academicApi) vote(ctx echo.Context) error {
	var data VoteRequest
	if err := api.bind(ctx, &data); err != nil {
		return badRequest(err)
	}
	poll, err := api.svc.Vote(ctx.Request().Context(), ctx.Param("id"), *data.Option)
	if err != nil {
		return badRequest(err)
	}
	return ctx.JSON(http.StatusOK, poll)
}

func (api *academicApi) currentPeriod(ctx echo.Context) error {
	className := ctx.QueryParam("className")
	if className == "" {
		return core.NewFieldError("className", "this field is required")
	}
	slot, err := api.svc.CurrentPeriod(ctx.Request().Context(), className, core.NowFunc())
	if err != nil {
		if academic.IsNoPeriod(err) {
			return errNoPeriod
		}
		return serverError(err)
	}
	return ctx.JSON(http.StatusOK, slot)
}

func (api *academicApi) summary(ctx echo.Context) error {
	sum, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return serverError(err)
	}
	return ctx.JSON(http.StatusOK, sum)
}
