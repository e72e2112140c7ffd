package pricing

import (
	"errors"
	"fmt"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// UnavailableError explains why a source could not produce a price
type UnavailableError struct {
	Source entities.PriceSource
	Reason entities.UnavailableReason
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s price unavailable: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("%s price unavailable: %s: %v", e.Source, e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(source entities.PriceSource, reason entities.UnavailableReason, err error) *UnavailableError {
	return &UnavailableError{Source: source, Reason: reason, Err: err}
}

// ReasonOf extracts the unavailability reason from err.
// Errors that did not come from this package count as network failures.
func ReasonOf(err error) entities.UnavailableReason {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return entities.ReasonNetwork
}
