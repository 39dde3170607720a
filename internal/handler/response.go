package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"commit-tracker/internal/apperror"
)

// writeError maps the error taxonomy onto HTTP statuses: validation → 400,
// not-found → 404, everything else → 500 with the original detail.
func writeError(c echo.Context, err error) error {
	switch {
	case apperror.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, apperror.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

// parseDate accepts the formats clients actually send: RFC 3339 datetimes
// or plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// optionalString distinguishes an absent JSON field from an explicit null:
// absent leaves a column untouched, null clears it.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// optionalUint is optionalString's counterpart for numeric references.
type optionalUint struct {
	Set   bool
	Value *uint
}

func (o *optionalUint) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}
