package model

import "errors"

// Check names a fallible extraction step.
type Check string

const (
	CheckReflection  Check = "reflection"
	CheckDeprecation Check = "deprecation"
	CheckReturnType  Check = "return type"
)

// Diagnostics records extraction failures, one slot per check.
//
// ParseError reports the outcome of the most recently executed check,
// so a later successful check hides an earlier failure there. The per-check
// slots keep every failure.
type Diagnostics struct {
	ReflectionErr  error
	DeprecationErr error
	ReturnErr      error

	lastCheck Check
	lastErr   error
}

func (d *Diagnostics) record(check Check, err error) {
	switch check {
	case CheckReflection:
		d.ReflectionErr = err
	case CheckDeprecation:
		d.DeprecationErr = err
	case CheckReturnType:
		d.ReturnErr = err
	}
	d.lastCheck = check
	d.lastErr = err
}

// ParseError returns the error of the last check that ran, or nil.
func (d *Diagnostics) ParseError() error {
	return d.lastErr
}

// LastCheck returns the last check that ran, or "" when none did.
func (d *Diagnostics) LastCheck() Check {
	return d.lastCheck
}

// Failed reports whether any check failed.
func (d *Diagnostics) Failed() bool {
	return d.ReflectionErr != nil || d.DeprecationErr != nil || d.ReturnErr != nil
}

// Err joins every recorded failure.
func (d *Diagnostics) Err() error {
	return errors.Join(d.ReflectionErr, d.DeprecationErr, d.ReturnErr)
}
