package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/duetapp/duet/internal/apperr"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000
	maxNoteLength        = 500
	maxDurationDays      = 365
)

var metricKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,49}$`)

// ValidateTitle validates goal and challenge titles
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return apperr.Validation("title is required")
	}

	if len(trimmed) > maxTitleLength {
		return apperr.Validation(fmt.Sprintf("title is too long (max %d characters)", maxTitleLength))
	}

	return nil
}

func ValidateDescription(field, text string) error {
	if len(text) > maxDescriptionLength {
		return apperr.Validation(fmt.Sprintf("%s is too long (max %d characters)", field, maxDescriptionLength))
	}
	return nil
}

func ValidateNote(note string) error {
	if len(note) > maxNoteLength {
		return apperr.Validation(fmt.Sprintf("note is too long (max %d characters)", maxNoteLength))
	}
	return nil
}

// ValidateMetric checks a metric key such as "steps" or "active_minutes".
func ValidateMetric(metric string) error {
	if metric == "" {
		return apperr.Validation("metric is required")
	}
	if !metricKeyPattern.MatchString(metric) {
		return apperr.Validation("metric must be lowercase letters, digits or underscores")
	}
	return nil
}

func ValidateTarget(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return apperr.Validation("target value must be a positive number")
	}
	return nil
}

func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return apperr.Validation("amount must be zero or more")
	}
	return nil
}

func ValidateWindow(start, end time.Time) error {
	if end.IsZero() {
		return apperr.Validation("end date is required")
	}
	if !end.After(start) {
		return apperr.Validation("end date must be after start date")
	}
	return nil
}

func ValidateDurationDays(days int) error {
	if days <= 0 || days > maxDurationDays {
		return apperr.Validation(fmt.Sprintf("duration must be between 1 and %d days", maxDurationDays))
	}
	return nil
}

// ValidateSyncDate parses a calendar day in YYYY-MM-DD form.
func ValidateSyncDate(date string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}
