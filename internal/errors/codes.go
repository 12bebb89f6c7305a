// Package errors provides structured error handling for yamlpick.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (read, write, size)
//   - 3XX: Parse errors (YAML content)
//   - 4XX: Validation errors (selection, input)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file read and write errors.
	CategoryIO Category = "IO"
	// CategoryParse indicates malformed YAML content.
	CategoryParse Category = "PARSE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the command cannot continue.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates one item was skipped and the batch continued.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigWrite    = "ERR_103_CONFIG_WRITE"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileRead     = "ERR_202_FILE_READ"
	ErrCodeFileWrite    = "ERR_203_FILE_WRITE"
	ErrCodeFileTooLarge = "ERR_204_FILE_TOO_LARGE"
	ErrCodeFileLocked   = "ERR_205_FILE_LOCKED"
	ErrCodeRootNotFound = "ERR_206_ROOT_NOT_FOUND"

	// Parse errors (300-399)
	ErrCodeYAMLMalformed    = "ERR_301_YAML_MALFORMED"
	ErrCodeYAMLDuplicateKey = "ERR_302_YAML_DUPLICATE_KEY"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeSelectionEmpty    = "ERR_402_SELECTION_EMPTY"
	ErrCodeSelectionMismatch = "ERR_403_SELECTION_MISMATCH"
	ErrCodeInvalidRange      = "ERR_404_INVALID_RANGE"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeIndexFailed = "ERR_502_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "ERR_301_..." -> '3'
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryParse
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Per-file read and parse problems only skip that file.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryParse:
		return SeverityWarning
	}

	switch code {
	case ErrCodeFileRead, ErrCodeFileTooLarge:
		return SeverityWarning
	case ErrCodeRootNotFound, ErrCodeConfigInvalid:
		return SeverityFatal
	}

	return SeverityError
}
