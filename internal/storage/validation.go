// Package storage provides the data persistence layer for users and their product events.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/spend-sage/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidUser      = errors.New("invalid user")
	ErrInvalidEvent     = errors.New("invalid product event")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateUser validates a user before it is stored.
func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidUser)
	}
	if user.Budget < 0 || math.IsNaN(user.Budget) || math.IsInf(user.Budget, 0) {
		return fmt.Errorf("%w: budget must be a non-negative number", ErrInvalidUser)
	}
	return nil
}

// validateEvents validates a slice of product events.
func validateEvents(events []model.ProductEvent) error {
	if events == nil {
		return fmt.Errorf("%w: events", ErrNilParameter)
	}
	if len(events) == 0 {
		return fmt.Errorf("%w: events", ErrEmptySlice)
	}

	for i := range events {
		if err := validateEvent(&events[i]); err != nil {
			return fmt.Errorf("event at index %d: %w", i, err)
		}
	}
	return nil
}

// validateEvent validates a single product event.
func validateEvent(event *model.ProductEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if event.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidEvent)
	}
	if event.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEvent)
	}
	if strings.TrimSpace(event.ProductTitle) == "" {
		return fmt.Errorf("%w: missing product title", ErrInvalidEvent)
	}
	if math.IsNaN(event.Price) || math.IsInf(event.Price, 0) {
		return fmt.Errorf("%w: price is not a number", ErrInvalidEvent)
	}
	return nil
}
