package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/finance"
)

func registerFinanceAPI(g *echo.Group, svc *finance.Service) {
	fees := registerResource(g, "/fees", svc.Fees(), adminMiddleware())
	fees.PATCH("/:id/pay", func(ctx echo.Context) error {
		fee, err := svc.Pay(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return badRequest(err)
		}
		return ctx.JSON(http.StatusOK, fee)
	}, adminMiddleware())
}
