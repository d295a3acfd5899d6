package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ssheladiya/graph-explorer/connector"
	"github.com/ssheladiya/graph-explorer/query"
)

// Sentinel errors for common explorer error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedDialect indicates a dialect without a query builder.
	ErrUnsupportedDialect = errors.New("unsupported dialect")

	// ErrExecutionFailed indicates that fetching or checking a query result
	// failed. The underlying error is wrapped for additional context.
	ErrExecutionFailed = errors.New("execution failed")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to request validation.
	KindValidation = "validation"

	// KindExecution represents errors that occur while running a query.
	KindExecution = "execution"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindNetwork represents errors reaching the database.
	KindNetwork = "network"

	// KindTimeout represents errors related to operation timeouts.
	KindTimeout = "timeout"

	// KindInternal represents internal errors.
	KindInternal = "internal"
)

// ExplorerError is a structured error that wraps an underlying error with
// the operation that failed and the category of the failure.
//
// ExplorerError supports errors.Is() and errors.As():
//
//	if errors.Is(err, &explorer.ExplorerError{Kind: explorer.KindTimeout}) {
//		// retry with a larger deadline
//	}
type ExplorerError struct {
	// Op is the operation that failed (e.g., "Explorer.FetchNeighbors").
	Op string

	// Kind categorizes the error (e.g., KindValidation, KindExecution).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides optional debugging information such as the dialect
	// or the vertex ID.
	Context map[string]any
}

// Error implements the error interface.
func (e *ExplorerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("explorer: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("explorer: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("explorer: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExplorerError) Unwrap() error {
	return e.Err
}

// Is matches a target ExplorerError by Kind, and by Op when the target sets
// one. Any other target is compared against the underlying error.
func (e *ExplorerError) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*ExplorerError); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of e with ctx merged into its Context.
func (e *ExplorerError) WithContext(ctx map[string]any) *ExplorerError {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewValidationError creates a new ExplorerError with KindValidation.
func NewValidationError(op string, err error) *ExplorerError {
	return &ExplorerError{Op: op, Kind: KindValidation, Err: err}
}

// NewExecutionError creates a new ExplorerError with KindExecution.
func NewExecutionError(op string, err error) *ExplorerError {
	return &ExplorerError{Op: op, Kind: KindExecution, Err: err}
}

// NewConfigurationError creates a new ExplorerError with KindConfiguration.
func NewConfigurationError(op string, err error) *ExplorerError {
	return &ExplorerError{Op: op, Kind: KindConfiguration, Err: err}
}

// NewNetworkError creates a new ExplorerError with KindNetwork.
func NewNetworkError(op string, err error) *ExplorerError {
	return &ExplorerError{Op: op, Kind: KindNetwork, Err: err}
}

// NewTimeoutError creates a new ExplorerError with KindTimeout.
func NewTimeoutError(op string, err error) *ExplorerError {
	return &ExplorerError{Op: op, Kind: KindTimeout, Err: err}
}

// NewInternalError creates a new ExplorerError with KindInternal.
func NewInternalError(op string, err error) *ExplorerError {
	return &ExplorerError{Op: op, Kind: KindInternal, Err: err}
}

// classify wraps an executor error into an ExplorerError of the matching
// kind. Cancellation is returned unchanged so callers can keep comparing
// against context.Canceled and connector.ErrSuperseded.
func classify(op string, d query.Dialect, err error) error {
	if err == nil {
		return nil
	}

	var e *ExplorerError
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		e = NewTimeoutError(op, err)
	case errors.Is(err, connector.ErrUnsupportedOperation),
		errors.Is(err, query.ErrUnknownOperation),
		errors.Is(err, query.ErrInvalidRequest):
		e = NewValidationError(op, err)
	case errors.Is(err, connector.ErrQueryFailed):
		e = NewExecutionError(op, fmt.Errorf("%w: %w", ErrExecutionFailed, err))
	default:
		e = NewNetworkError(op, fmt.Errorf("%w: %w", ErrExecutionFailed, err))
	}
	return e.WithContext(map[string]any{"dialect": d.String()})
}

// CloseWithLog closes closer and logs any error at warning level. It is
// intended for defer statements. If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer explorer.CloseWithLog(exp, logger, "explorer")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
