// Package errors provides the error handling and warning system shared by
// the whole library. It is inspired by scikit-learn's warning/exception
// design and carries structured error information on top of
// cockroachdb/errors stack traces.
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// The default handler logs to standard error.
		log.Printf("niklib-warning: %v\n", w)
	}
	// zerolog sink, wired lazily to avoid a circular import with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the library-wide warning handler. This controls how
// diagnostic warnings such as OverlapWarning are surfaced.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings entirely
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the zerolog sink when available, falling
// back to the plain handler otherwise.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// OverlapWarning reports that two resolved transformers operate on an
// intersecting set of columns. Overlap is legal (transforms may be piped
// sequentially over the same column) but is usually unintended, so it is
// surfaced as a diagnostic rather than an error.
type OverlapWarning struct {
	NameA   string
	NameB   string
	Columns []string
}

func (w *OverlapWarning) Error() string {
	return fmt.Sprintf("transformer %q is overlapping with transformer %q on columns [%s]",
		w.NameA, w.NameB, strings.Join(w.Columns, ", "))
}

// MarshalZerologObject adds structured overlap information to a zerolog event.
func (w *OverlapWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("transformer_a", w.NameA).
		Str("transformer_b", w.NameB).
		Strs("columns", w.Columns).
		Str("type", "OverlapWarning")
}

// NewOverlapWarning creates a new OverlapWarning.
func NewOverlapWarning(nameA, nameB string, columns []string) *OverlapWarning {
	return &OverlapWarning{NameA: nameA, NameB: nameB, Columns: columns}
}

// FeatureNameWarning reports that a generated output feature name could not
// be mapped back to an original column name and was kept opaque.
type FeatureNameWarning struct {
	FeatureName string
}

func (w *FeatureNameWarning) Error() string {
	return fmt.Sprintf("no original column position matches generated feature name %q; keeping it as is",
		w.FeatureName)
}

// MarshalZerologObject adds structured feature name information to a zerolog event.
func (w *FeatureNameWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("feature_name", w.FeatureName).
		Str("type", "FeatureNameWarning")
}

// NewFeatureNameWarning creates a new FeatureNameWarning.
func NewFeatureNameWarning(featureName string) *FeatureNameWarning {
	return &FeatureNameWarning{FeatureName: featureName}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// ConfigurationError is a fatal, user-facing configuration problem: an
// unknown transformer name in a directive key, an injected parameter the
// target transformer does not accept, or use of a resolver whose configs
// have not been set yet. Callers are expected to fail fast without retry.
type ConfigurationError struct {
	Op     string
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("niklib: %s: invalid configuration for %q: %s", e.Op, e.Key, e.Reason)
	}
	return fmt.Sprintf("niklib: %s: invalid configuration: %s", e.Op, e.Reason)
}

// MarshalZerologObject adds structured configuration error information to a
// zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("key", e.Key).
		Str("reason", e.Reason).
		Str("type", "ConfigurationError")
}

// NewConfigurationError creates a new ConfigurationError with a stack trace.
func NewConfigurationError(op, key, reason string) error {
	err := &ConfigurationError{Op: op, Key: key, Reason: reason}
	return errors.WithStack(err)
}

// NotFittedError reports that Transform or a similar method was called on a
// transformer that has not been fitted yet.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("niklib: %s: this transformer is not fitted yet. Call Fit() before using %s()",
		e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports that input data dimensions differ from what was
// expected.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("niklib: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports that an input argument failed validation, e.g. a
// dataset argument of an unsupported type or an out-of-range position.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("niklib: validation failed for parameter '%s': %s (got: %v)",
		e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches the target error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be assigned to the target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrNotImplemented marks functionality that is recognized but not
	// implemented, such as grouped parameter computation for transformers
	// without a grouped-parameter definition.
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData marks empty input data.
	ErrEmptyData = New("empty data")
)
