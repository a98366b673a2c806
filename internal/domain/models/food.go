package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyName indicates a food without a usable name.
var ErrEmptyName = errors.New("food name must not be empty")

// ErrMissingDate indicates a food without a best-before date.
var ErrMissingDate = errors.New("best-before date must be provided")

// Food is a stored inventory item. ID is assigned by the server.
type Food struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	BestBeforeDate Date   `json:"bestBeforeDate" db:"best_before_date"`
}

// NewFood is the payload used to create a Food.
type NewFood struct {
	Name           string `json:"name" binding:"required"`
	BestBeforeDate Date   `json:"bestBeforeDate"`
}

// Validate checks that both fields are present and normalizes the name.
func (n *NewFood) Validate() error {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return ErrEmptyName
	}
	if n.BestBeforeDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Severity is the visual urgency attached to a best-before date.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

// Severities lists every severity in display order.
var Severities = []Severity{SeverityNeutral, SeverityWarning, SeverityAlert}

// Classify buckets a best-before date relative to now. daysUntil counts
// calendar days from now's date (in now's location) to bestBefore:
// <= -1 is neutral, 0 is warning, >= 1 is alert.
func Classify(now time.Time, bestBefore Date) Severity {
	if bestBefore.IsZero() {
		return SeverityNeutral
	}

	daysUntil := bestBefore.DaysSince(DateOf(now))
	switch {
	case daysUntil <= -1:
		return SeverityNeutral
	case daysUntil == 0:
		return SeverityWarning
	default:
		return SeverityAlert
	}
}
