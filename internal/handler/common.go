// Package handler implements the HTTP endpoints.  Handlers bind and
// validate a request DTO, call a repository or service, and answer JSON.
// Errors are always {"error": "<message>"}.
package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/middleware"
	"github.com/selvawasi/selvawasi-api/internal/model"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/service"
)

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in messages use the json tag.
type Validator struct{ v *validator.Validate }

// NewValidator returns the echo validator used for every request body.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// bind decodes the body into dst and validates it.  The returned error is
// ready to be shown to the client.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errors.New("invalid body")
	}
	if err := c.Validate(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msg := fe.Field() + " failed " + fe.Tag()
				if fe.Param() != "" {
					msg += "=" + fe.Param()
				}
				msgs = append(msgs, msg)
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// badRequest answers 400 with err's text.
func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

// notFound answers 404 with a resource specific message.
func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// forbidden answers 403.
func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// queryID parses an optional numeric query parameter; absent means 0.
func queryID(c echo.Context, name string) uint64 {
	id, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return id
}

// caller returns the authenticated user id and whether they are an admin.
func caller(c echo.Context) (uint64, bool) {
	id, _ := middleware.UserID(c)
	return id, middleware.Role(c) == model.RoleAdmin
}

// invalidInput is a 400 with a message for the client.
type invalidInput string

func (e invalidInput) Error() string { return string(e) }

// respondErr maps domain and repository errors to status codes.  Anything
// unrecognised is logged and answered with 500.
func respondErr(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := err.Error()
	var bad invalidInput
	switch {
	case errors.As(err, &bad),
		errors.Is(err, service.ErrBookingTarget),
		errors.Is(err, service.ErrInvalidPax),
		errors.Is(err, service.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrScheduleNotFound),
		errors.Is(err, service.ErrExperienceNotFound),
		errors.Is(err, service.ErrRestaurantNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrNoSeatsAvailable),
		errors.Is(err, service.ErrSeatConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, errBoatBusy),
		errors.Is(err, repository.ErrEmailExists):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrConflict):
		status, msg = http.StatusConflict, "conflict with existing data"
	}
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// ErrorHandler renders echo's own errors (unknown route, bad method) in
// the API's error shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logrus.WithError(err).Error("unhandled error")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
