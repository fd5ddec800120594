package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lokl-mora-backend/internal/pkg/apperrors"
)

// isValidEmail matches /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Analysis years outside this range are rejected.
const (
	MinYear = 2000
	MaxYear = 2100
)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ParseYear reads an analysis year. An empty value yields fallback.
func ParseYear(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q is not a number", apperrors.ErrValidation, raw)
	}
	if year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: year %d out of range %d-%d", apperrors.ErrValidation, year, MinYear, MaxYear)
	}
	return year, nil
}

// ParseDate reads a YYYY-MM-DD date in loc. An empty value yields the zero time.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", apperrors.ErrValidation, raw)
	}
	return t, nil
}

// ParseOptionalInt reads a non-negative integer filter. An empty value yields nil.
func ParseOptionalInt(name, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer", apperrors.ErrValidation, name)
	}
	return &n, nil
}

// ParseOptionalAmount reads a non-negative money filter. An empty value yields nil.
func ParseOptionalAmount(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%w: %s must be a non-negative amount", apperrors.ErrValidation, name)
	}
	return &f, nil
}

// IsValidFrequency reports whether f is a supported reminder cadence.
func IsValidFrequency(f string) bool {
	switch f {
	case "daily", "weekly", "monthly":
		return true
	}
	return false
}
