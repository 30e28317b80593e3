package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/campus"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
)

type campusApi struct {
	*resourceAPI
	svc *campus.Service
}

func registerCampusAPI(g *echo.Group, rapi *resourceAPI, svc *campus.Service) {
	api := campusApi{resourceAPI: rapi, svc: svc}
	admin := adminMiddleware()
	staff := staffMiddleware()

	registerResource(g, "/hostels", svc.Hostels, admin)
	library := registerResource(g, "/library", svc.Books, staff)
	library.PATCH("/:id/copies", api.updateCopies, staff)
	cards := registerResource(g, "/idcards", svc.IDCards, admin)
	cards.PATCH("/:id/status", api.setCardStatus, admin)
	tickets := registerResource(g, "/halltickets", svc.HallTickets, admin)
	tickets.PATCH("/:id/status", api.setTicketStatus, admin)
	certs := registerResource(g, "/certificates", svc.Certificates)
	certs.PATCH("/:id/review", api.reviewCertificate, staff)
}

type (
	CopiesRequest struct {
		AvailableCopies *int `json:"availableCopies" validate:"required,min=0"`
		TotalCopies     *int `json:"totalCopies" validate:"omitempty,min=1"`
	}

	StatusRequest struct {
		Status  string `json:"status" validate:"required"`
		Remarks string `json:"remarks"`
	}
)

func (api *campusApi) updateCopies(ctx echo.Context) error {
	var data CopiesRequest
	if err := api.bind(ctx, &data); err != nil {
		return badRequest(err)
	}
	book, err := api.svc.UpdateCopies(ctx.Request().Context(), ctx.Param("id"), *data.AvailableCopies, data.TotalCopies)
	if err != nil {
		return badRequest(err)
	}
	return ctx.JSON(http.StatusOK, book)
}

func (api *campusApi) setCardStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := api.bind(ctx, &data); err != nil {
		return badRequest(err)
	}
	card, err := api.svc.SetCardStatus(ctx.Request().Context(), ctx.Param("id"), campus.CardStatus(data.Status))
	if err != nil {
		return badRequest(err)
	}
	return ctx.JSON(http.StatusOK, card)
}

func (api *campusApi) setTicketStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := api.bind(ctx, &data); err != nil {
		return badRequest(err)
	}
	ticket, err := api.svc.SetTicketStatus(ctx.Request().Context(), ctx.Param("id"), campus.TicketStatus(data.Status))
	if err != nil {
		return badRequest(err)
	}
	return ctx.JSON(http.StatusOK, ticket)
}

func (api *campusApi) reviewCertificate(ctx echo.Context) error {
	var data StatusRequest
	if err := api.bind(ctx, &data); err != nil {
		return badRequest(err)
	}
	cert, err := api.svc.ReviewCertificate(ctx.Request().Context(), ctx.Param("id"), resource.ReviewStatus(data.Status), data.Remarks)
	if err != nil {
		return badRequest(err)
	}
	return ctx.JSON(http.StatusOK, cert)
}
