// Package errutil centralizes the sentinel errors shared across packages
// and a small aggregator built on go.uber.org/multierr, mirroring the
// teacher's preference for wrapped, inspectable errors over bespoke error
// types or panics.
package errutil

import (
	"errors"

	"go.uber.org/multierr"
)

// Sentinel errors, matched with errors.Is by callers across package
// boundaries.
var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflicting declaration")
	ErrTreeShapeConflict     = errors.New("resource id declared as both leaf and branch prefix")
	ErrNoFullCandidate       = errors.New("no full candidate found while resolving")
	ErrNoMatchingConditionSet = errors.New("no condition set matched the given context")
	ErrValidation            = errors.New("validation failed")
	ErrSealed                = errors.New("builder is sealed")
)

// Aggregator accumulates independent errors (e.g. while validating a batch
// of declarations) and reports them together, so a caller sees every
// failure in one pass instead of stopping at the first.
type Aggregator struct {
	err error
}

// Add appends err to the aggregator if non-nil.
func (a *Aggregator) Add(err error) {
	if err == nil {
		return
	}
	a.err = multierr.Append(a.err, err)
}

// Err returns the aggregated error, or nil if nothing was added.
func (a *Aggregator) Err() error { return a.err }

// Errors returns the individual errors that make up the aggregate.
func (a *Aggregator) Errors() []error {
	return multierr.Errors(a.err)
}
