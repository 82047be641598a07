package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LukaszKielczewski66/fightclub/core"
)

var (
	fromParam      = "from"
	toParam        = "to"
	limitParam     = "limit"
	trainerIDParam = "trainerId"

	timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
)

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// bindRange reads the optional from/to query params. Malformed values are a validation error.
func bindRange(ctx echo.Context) (core.TimeRange, error) {
	var rng core.TimeRange
	var flds []core.FieldError
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{fromParam, &rng.From}, {toParam, &rng.To}} {
		val := strings.TrimSpace(ctx.QueryParam(p.name))
		if val == "" {
			continue
		}
		t, ok := parseTime(val)
		if !ok {
			flds = append(flds, core.FieldError{Field: p.name, Error: "must be an ISO-8601 date or time"})
			continue
		}
		*p.dst = t
	}
	if len(flds) > 0 {
		return core.TimeRange{}, core.NewValidationError(nil, flds...)
	}
	return rng, nil
}

// bindLimit reads the optional limit query param; 0 when absent.
func bindLimit(ctx echo.Context) (int, error) {
	val := strings.TrimSpace(ctx.QueryParam(limitParam))
	if val == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: limitParam, Error: "must be an integer"})
	}
	return limit, nil
}
