package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// handled reports whether the error handler already knows the status of err.
func handled(err error) bool {
	var (
		herr *echo.HTTPError
		verr *core.ValidationError
		vErrs validator.ValidationErrors
	)
	cause := errors.Cause(err)
	return errors.As(err, &herr) || errors.As(err, &verr) || errors.As(err, &vErrs) ||
		errors.Is(err, core.ErrNotFound) || errors.Is(err, user.ErrNotFound) || core.IsShutdown(cause)
}

// badRequest reports any failure of a write as a 400 carrying the raw message.
func badRequest(err error) error {
	if handled(err) {
		return err
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}

// serverError reports any failure of a read as a 500 carrying the raw message.
func serverError(err error) error {
	if handled(err) {
		return err
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			resp errorResponse
			herr *echo.HTTPError
			verr *core.ValidationError
		)

		if vErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok {
			err = core.TranslateValidationErrors(vErrs, translator)
		}

		switch {
		case errors.As(err, &verr):
			code = http.StatusBadRequest
			resp.Error = verr.Error()
			if len(verr.Fields) > 0 {
				resp.Fields = make(map[string]string, len(verr.Fields))
				for _, fErr := range verr.Fields {
					resp.Fields[fErr.Field] = fErr.Error
				}
			}
		case errors.Is(err, core.ErrNotFound), errors.Is(err, user.ErrNotFound):
			code = http.StatusNotFound
			resp.Error = errors.Cause(err).Error()
		case errors.As(err, &herr):
			if herr == middleware.ErrJWTMissing {
				herr = echo.NewHTTPError(http.StatusUnauthorized, herr.Message)
			} else if inner, ok := herr.Internal.(*echo.HTTPError); ok {
				herr = inner
			}
			code = herr.Code
			if m, ok := herr.Message.(string); ok {
				resp.Error = m
			} else {
				resp.Error = http.StatusText(code)
			}
			if code >= http.StatusInternalServerError {
				logError(ctx, logger, err)
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			resp.Error = http.StatusText(code)
			logError(ctx, logger, err)

			// shutting down...
			if core.IsShutdown(errors.Cause(err)) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func logError(ctx echo.Context, logger core.Logger, err error) {
	msg := ctx.Request().Method + " " + ctx.Path() + ": " + err.Error()
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		logger.Error(msg, err, claims.User())
		return
	}
	logger.Error(msg, err)
}
