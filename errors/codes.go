// Package errors provides the error handling system shared by the forge-sync packages.
// It extends Go's standard error handling with structured error codes and
// context preservation so fatal conditions can be diagnosed without rerunning.
package errors

// ErrorCode represents a specific error condition in forge-sync.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource (repository, revision, file) does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeConflict indicates a resource state conflict that prevents the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	// A malformed equivalence database is reported with this code.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeSchemaFailed indicates the data failed schema validation.
	CodeSchemaFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	// CodeIncompatibleVersion indicates a persisted or configured version is not
	// compatible with the schema version understood by this build.
	CodeIncompatibleVersion ErrorCode = "INCOMPATIBLE_VERSION"

	// Configuration loading errors.

	// CodeCUELoadFailed indicates a CUE file could not be read or compiled.
	CodeCUELoadFailed ErrorCode = "CUE_LOAD_FAILED"

	// CodeCUEDecodeFailed indicates a CUE value could not be decoded into Go types.
	CodeCUEDecodeFailed ErrorCode = "CUE_DECODE_FAILED"

	// Infrastructure errors.

	// CodeDatabase indicates reading or writing the equivalence database failed.
	CodeDatabase ErrorCode = "DATABASE_ERROR"

	// CodeFilesystem indicates a filesystem operation failed.
	CodeFilesystem ErrorCode = "FILESYSTEM_ERROR"

	// Execution errors.

	// CodeExecutionFailed indicates an external command or metadata retrieval failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeMergeFailed indicates a codebase merge could not be carried out at all.
	// Per-file conflicts are data, not errors, and never carry this code.
	CodeMergeFailed ErrorCode = "MERGE_FAILED"

	// System errors.

	// CodeInternal indicates an internal system error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeNotImplemented indicates the requested functionality is not implemented.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
