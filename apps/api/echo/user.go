package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

const errNoPermsToSetRoles = "not enough rights to set these roles"

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// LoginResponse is returned by login and token refresh alike.
	LoginResponse struct {
		Token string `json:"token"`
	}

	ActiveRequest struct {
		IsActive *bool `json:"isActive" validate:"required"`
	}
)

type userApi struct {
	*resourceAPI
	auth *authenticator
	svc  *user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, rapi *resourceAPI, auth *authenticator, svc *user.Service) {
	api := userApi{resourceAPI: rapi, auth: auth, svc: svc}
	admin := adminMiddleware()

	ug := g.Group("/users")
	ug.POST("/login", api.login)

	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.POST("/me/password", api.changePassword)

	ag.POST("/register", api.register, admin)
	ag.GET("", api.query, admin)
	ag.GET("/:id", api.get, admin)
	ag.PATCH("/:id/active", api.setActive, admin)
}

// Normalize lower-cases the username and checks the required fields.
func (lr *LoginRequest) Normalize(rapi *resourceAPI) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	if err := rapi.validate.Struct(lr); err != nil {
		return core.TranslateValidationErrors(err, rapi.translator)
	}
	return nil
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return badRequest(errors.Wrap(err, "binding to LoginRequest"))
	}
	if err := data.Normalize(api.resourceAPI); err != nil {
		return err
	}

	claims, err := api.auth.authenticate(ctx.Request().Context(), api.svc, data.Username, data.Password)
	if err != nil {
		return err
	}
	token, err := api.auth.generateToken(claims)
	return api.respondToken(ctx, token, err)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return api.respondToken(ctx, token, nil)
}

func (api *userApi) respondToken(ctx echo.Context, token string, err error) error {
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	var data user.PasswordChange
	if err := ctx.Bind(&data); err != nil {
		return badRequest(errors.Wrap(err, "binding to PasswordChange"))
	}
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if _, err = api.svc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return badRequest(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// register creates an account; nobody grants roles above their own.
func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return badRequest(errors.Wrap(err, "binding to NewUser"))
	}
	creator, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !creator.CanGrant(data.Roles) {
		return core.NewFieldError("roles", errNoPermsToSetRoles)
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return badRequest(err)
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	users, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return serverError(errors.Wrap(err, "querying users"))
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) get(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setActive(ctx echo.Context) error {
	var data ActiveRequest
	if err := api.bind(ctx, &data); err != nil {
		return badRequest(err)
	}
	id := ctx.Param("id")
	if creator, err := getContextUser(ctx, api.svc); err == nil && creator.ID == id && !*data.IsActive {
		return core.NewFieldError("isActive", "you cannot deactivate your own account")
	}
	usr, err := api.svc.SetActive(ctx.Request().Context(), id, *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}
