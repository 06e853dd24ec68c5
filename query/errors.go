package query

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidType is returned when a value of an unexpected type shows
	// up at some point of the evaluation.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrUnsupportedOperation is returned at translate time when a plan
	// node has no mapping for the target backend.
	ErrUnsupportedOperation = errors.NewKind("backend %q does not support %s")

	// ErrBackendNotFound is returned when no adapter has been registered
	// for the backend a plan resolves to.
	ErrBackendNotFound = errors.NewKind("no adapter registered for backend %q")

	// ErrTableNotFound is returned when a scanned table is absent from
	// the catalog of its backend.
	ErrTableNotFound = errors.NewKind("table %q not found in backend %q")

	// ErrColumnNotFound is returned when a referenced column does not
	// exist in the schema in scope.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in table %q")

	// ErrTypeCoercion is returned when a backend-native value cannot be
	// normalized to the declared type of its column. It names the column
	// and the zero-based row ordinal of the offending cell.
	ErrTypeCoercion = errors.NewKind("cannot coerce value %v to %s: column %q, row %d")

	// ErrBackendConnection is returned when backend I/O fails during
	// execution. The failing backend is always identified.
	ErrBackendConnection = errors.NewKind("backend %q: %s")

	// ErrMaterialization wraps a normalization failure with the backend
	// and the plan fragment it was materializing, so the failing cell can
	// be traced back to its source. The cause keeps its own kind.
	ErrMaterialization = errors.NewKind("materializing %s on backend %q")

	// ErrJoinKeyTypeMismatch is returned when the declared types of the
	// two join keys are incompatible.
	ErrJoinKeyTypeMismatch = errors.NewKind("join key type mismatch: %q is %s, %q is %s")

	// ErrCancelled is returned when a materialize call is cancelled while
	// executing. It carries the plan fragment that was running.
	ErrCancelled = errors.NewKind("evaluation cancelled: %s")

	// ErrInvalidChildrenNumber is returned when WithChildren is called
	// with a number of children that does not match the node arity.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	// ErrUnexpectedRowLength is returned when a backend row has a
	// different number of cells than the declared schema.
	ErrUnexpectedRowLength = errors.NewKind("expected %d values, got %d")

	// ErrInvalidLimit is returned when a limit is built with a negative
	// row count.
	ErrInvalidLimit = errors.NewKind("limit must be non-negative, got %d")
)
