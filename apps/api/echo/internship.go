package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/internship"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/project"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
)

func registerInternshipAPI(g *echo.Group, api *resourceAPI, svc *internship.Service) {
	staff := staffMiddleware()

	ig := g.Group("/internships")
	registerResource(ig, "/batches", svc.Batches, staff)
	registerResource(ig, "/companies", svc.Companies, staff)
	docs := registerResource(ig, "/documents", svc.Documents)
	docs.PATCH("/:id/review", reviewHandler(api, svc.ReviewDocument), staff)
}

func registerProjectAPI(g *echo.Group, api *resourceAPI, svc *project.Service) {
	staff := staffMiddleware()

	pg := g.Group("/projects")
	registerResource(pg, "/groups", svc.Groups)
	docs := registerResource(pg, "/documents", svc.Documents)
	docs.PATCH("/:id/review", reviewHandler(api, svc.ReviewDocument), staff)
	registerResource(pg, "/evaluations", svc.Evaluations, staff)
}

// reviewHandler serves PATCH /:id/review with the review function of a document service.
func reviewHandler[T any](
	api *resourceAPI,
	review func(ctx context.Context, id string, status resource.ReviewStatus, remarks string) (*T, error),
) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data StatusRequest
		if err := api.bind(ctx, &data); err != nil {
			return badRequest(err)
		}
		doc, err := review(ctx.Request().Context(), ctx.Param("id"), resource.ReviewStatus(data.Status), data.Remarks)
		if err != nil {
			return badRequest(err)
		}
		return ctx.JSON(http.StatusOK, doc)
	}
}
