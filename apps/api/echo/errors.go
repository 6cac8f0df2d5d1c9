package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/company"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHTTPForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// statusFor maps domain sentinel errors to HTTP status codes. Not-found and
// out-of-scope are indistinguishable on purpose.
func statusFor(err error) (int, bool) {
	switch err {
	case user.ErrNotFound, client.ErrNotFound, company.ErrNotFound, student.ErrNotFound, lesson.ErrNotFound:
		return http.StatusNotFound, true
	case client.ErrEmailExists, student.ErrEmailExists, user.ErrEmailExists,
		lesson.ErrEndBeforeStart, lesson.ErrNoStudents,
		student.ErrCompanyLinked, lesson.ErrCompanyLinked:
		return http.StatusBadRequest, true
	case lesson.ErrCreateForbidden, lesson.ErrUpdateForbidden:
		return http.StatusForbidden, true
	}
	switch err.(type) {
	case lesson.MissingStudentError:
		return http.StatusNotFound, true
	case lesson.SpaceError:
		return http.StatusInternalServerError, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders
// all errors as {"detail": ...} bodies.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var detail interface{}

		cause := errors.Cause(err)
		if status, ok := statusFor(cause); ok {
			code = status
			detail = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					detail = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				detail = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusUnprocessableEntity
				detail = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					detail = fldErrs
				} else {
					detail = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				detail = http.StatusText(http.StatusInternalServerError)

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.Email = claims.Email
					usr.Role = user.Role(claims.Type)
				}
				logger.Error(http.StatusText(code), errors.Wrap(err, "handling request"), usr)
			}
		}

		if code == http.StatusUnauthorized {
			ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"detail": detail})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
