package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is reports whether target is an AppError of the same type and code.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

func caller(skip int) string {
	_, file, line, _ := runtime.Caller(skip)
	return fmt.Sprintf("%s:%d", file, line)
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(2),
		Context:  make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		h.logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Not found", err.LogFields()...)
	case ErrorTypeConflict:
		h.logger.WarnContext(ctx, "Conflict", err.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeExternal, ErrorTypeInternal, ErrorTypeTimeout:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Sentinels for errors.Is. Never call WithContext on these; use the
// constructors below, which allocate.
var (
	ErrInvalidInput        = New(ErrorTypeValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidReading      = New(ErrorTypeValidation, "INVALID_READING", "Glucose reading outside plausible range")
	ErrInconsistentMeal    = New(ErrorTypeValidation, "INCONSISTENT_MEAL", "Meal totals do not match food items")
	ErrUnknownUnit         = New(ErrorTypeValidation, "UNKNOWN_UNIT", "Unknown quantity unit")
	ErrFoodNotFound        = New(ErrorTypeNotFound, "FOOD_NOT_FOUND", "Food not found")
	ErrSubjectNotFound     = New(ErrorTypeNotFound, "SUBJECT_NOT_FOUND", "Subject not found")
	ErrSubjectExists       = New(ErrorTypeConflict, "SUBJECT_EXISTS", "Subject name already taken")
	ErrDuplicateHealthStat = New(ErrorTypeConflict, "DUPLICATE_HEALTH_STAT", "Health stats already recorded for this day")
	ErrDatabaseError       = New(ErrorTypeDatabase, "DB_ERROR", "Database operation failed")
	ErrExternalAPI         = New(ErrorTypeExternal, "EXTERNAL_API", "External API error")
	ErrTimeout             = New(ErrorTypeTimeout, "TIMEOUT", "Operation timed out")
	ErrInternalServer      = New(ErrorTypeInternal, "INTERNAL", "Internal server error")
)

// Convenience functions for common errors

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "INVALID_INPUT", message)
}

func NewInvalidReadingError(value float64) *AppError {
	return New(ErrorTypeValidation, "INVALID_READING",
		fmt.Sprintf("glucose value %.1f is outside the plausible range", value)).
		WithContext("value", value)
}

func NewInconsistentMealError(field string, declared, computed float64) *AppError {
	return New(ErrorTypeValidation, "INCONSISTENT_MEAL",
		fmt.Sprintf("meal %s %.2f does not match item sum %.2f", field, declared, computed)).
		WithContext("field", field)
}

func NewUnknownUnitError(unit string) *AppError {
	return New(ErrorTypeValidation, "UNKNOWN_UNIT", fmt.Sprintf("unknown unit %q", unit)).
		WithContext("unit", unit)
}

func NewFoodNotFoundError(name string) *AppError {
	return New(ErrorTypeNotFound, "FOOD_NOT_FOUND", fmt.Sprintf("food %q not found", name)).
		WithContext("food", name)
}

func NewSubjectNotFoundError(ref interface{}) *AppError {
	return New(ErrorTypeNotFound, "SUBJECT_NOT_FOUND", fmt.Sprintf("subject %v not found", ref)).
		WithContext("subject", ref)
}

func NewSubjectExistsError(name string) *AppError {
	return New(ErrorTypeConflict, "SUBJECT_EXISTS", fmt.Sprintf("subject name %q already taken", name)).
		WithContext("name", name)
}

func NewDuplicateHealthStatError(day string) *AppError {
	return New(ErrorTypeConflict, "DUPLICATE_HEALTH_STAT", fmt.Sprintf("health stats for %s already recorded", day)).
		WithContext("day", day)
}

func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "Database operation failed")
}

func NewExternalAPIError(err error, api string) *AppError {
	return Wrap(err, ErrorTypeExternal, "EXTERNAL_API", fmt.Sprintf("%s API error", api)).
		WithContext("api", api)
}

func NewTimeoutError(operation string) *AppError {
	return New(ErrorTypeTimeout, "TIMEOUT", fmt.Sprintf("%s operation timed out", operation)).
		WithContext("operation", operation)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal server error")
}
