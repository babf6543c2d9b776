package validation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city exceeds the configured maximum length.
var ErrCityTooLong = errors.New("city too long")

var validate = validator.New()

// NarrateRequest is the body of POST /api/narrate.
type NarrateRequest struct {
	City string `json:"city" validate:"required"`
}

// ValidateCity trims the input and enforces non-emptiness and maxLen (in runes, 0 = no limit).
// No other rules apply: the geocoding provider decides whether a name resolves.
func ValidateCity(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if err := validate.Struct(NarrateRequest{City: s}); err != nil {
		return "", ErrCityEmpty
	}
	if maxLen > 0 {
		if err := validate.Var(s, "max="+strconv.Itoa(maxLen)); err != nil {
			return "", ErrCityTooLong
		}
	}
	return s, nil
}
