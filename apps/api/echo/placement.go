package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/placement"
)

func registerPlacementAPI(g *echo.Group, api *resourceAPI, svc *placement.Service) {
	staff := staffMiddleware()

	pg := g.Group("/placements")
	registerResource(pg, "/companies", svc.Companies, staff)
	apps := registerResource(pg, "/applications", svc.Applications)
	apps.PATCH("/:id/status", func(ctx echo.Context) error {
		var data StatusRequest
		if err := api.bind(ctx, &data); err != nil {
			return badRequest(err)
		}
		app, err := svc.SetApplicationStatus(ctx.Request().Context(), ctx.Param("id"), placement.ApplicationStatus(data.Status), data.Remarks)
		if err != nil {
			return badRequest(err)
		}
		return ctx.JSON(http.StatusOK, app)
	}, staff)
	registerResource(pg, "/rounds", svc.Rounds, staff)
}
