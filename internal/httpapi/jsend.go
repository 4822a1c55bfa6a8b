package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/payloadschema"
)

type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func fail(c echo.Context, code int, message string, data any) error {
	resp := jsendResponse{
		Status:  "fail",
		Message: message,
	}
	if data != nil {
		resp.Data = data
	}
	return c.JSON(code, resp)
}

func failValidation(c echo.Context, message string, fieldErrors map[string]string) error {
	if message == "" {
		message = "Validation failed"
	}
	var data any
	if len(fieldErrors) > 0 {
		data = map[string]any{"validation_errors": fieldErrors}
	}
	return fail(c, http.StatusBadRequest, message, data)
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, jsendResponse{
		Status:  "error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}

// respondError renders err as a JSend fail or error body. Internal and
// upstream causes are logged, never returned to the client.
func (s *Server) respondError(c echo.Context, err error) error {
	var ve *payloadschema.ValidationError
	if errors.As(err, &ve) {
		return failValidation(c, "Invalid request body", ve.Fields)
	}

	appErr := apperr.As(err)
	switch appErr.Kind {
	case apperr.KindInternal, apperr.KindUpstream:
		s.logger.Error().
			Err(err).
			Str("kind", appErr.Kind.String()).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
		if appErr.Kind == apperr.KindUpstream {
			return internalError(c, appErr.Message)
		}
		return internalError(c, "Internal server error")
	default:
		return fail(c, appErr.Kind.HTTPStatus(), appErr.Message, nil)
	}
}
