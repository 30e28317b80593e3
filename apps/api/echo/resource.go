package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
)

// resourceAPI holds what the patch handlers need to validate their request bodies.
type resourceAPI struct {
	validate   *validator.Validate
	translator ut.Translator
}

// bind decodes the request body into v and validates it.
func (api *resourceAPI) bind(ctx echo.Context, v interface{}) error {
	if err := ctx.Bind(v); err != nil {
		return err
	}
	if err := api.validate.StructCtx(ctx.Request().Context(), v); err != nil {
		return core.TranslateValidationErrors(err, api.translator)
	}
	return nil
}

// registerResource mounts create, list and get routes of svc under path.
// writers guard the create route.
func registerResource[T any, P interface {
	*T
	resource.Document
}](g *echo.Group, path string, svc *resource.Service[T, P], writers ...echo.MiddlewareFunc) *echo.Group {
	rg := g.Group(path)
	rg.POST("", createHandler(svc), writers...)
	rg.GET("", listHandler(svc))
	rg.GET("/:id", getHandler(svc))
	return rg
}

func createHandler[T any, P interface {
	*T
	resource.Document
}](svc *resource.Service[T, P]) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		doc := new(T)
		if err := ctx.Bind(doc); err != nil {
			return badRequest(errors.Wrapf(err, "binding to %s", svc.Name()))
		}
		created, err := svc.Create(ctx.Request().Context(), doc)
		if err != nil {
			return badRequest(err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}
}

func listHandler[T any, P interface {
	*T
	resource.Document
}](svc *resource.Service[T, P]) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter, err := svc.ParseFilter(queryParams(ctx))
		if err != nil {
			return err
		}
		docs, err := svc.List(ctx.Request().Context(), filter)
		if err != nil {
			return serverError(err)
		}
		return ctx.JSON(http.StatusOK, docs)
	}
}

func getHandler[T any, P interface {
	*T
	resource.Document
}](svc *resource.Service[T, P]) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		doc, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return serverError(err)
		}
		return ctx.JSON(http.StatusOK, doc)
	}
}

// queryParams keeps the first value of every query parameter.
func queryParams(ctx echo.Context) map[string]string {
	values := ctx.QueryParams()
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
