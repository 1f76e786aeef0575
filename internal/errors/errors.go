package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnrecognizedFormat indicates no mapping profile matches an archive's contents
	UnrecognizedFormat ErrorCode = "UNRECOGNIZED_FORMAT"
	// MissingEntry indicates a signature file the detected profile needs is absent
	MissingEntry ErrorCode = "MISSING_ENTRY"
	// MalformedEntry indicates a signature file failed its grammar
	MalformedEntry ErrorCode = "MALFORMED_ENTRY"
	// UnknownNamespace indicates a namespace label has no node in the mapping graph
	UnknownNamespace ErrorCode = "UNKNOWN_NAMESPACE"
	// NoRemapPath indicates two known namespaces are not connected by any mapping data
	NoRemapPath ErrorCode = "NO_REMAP_PATH"
	// ChecksumMismatch indicates a mapping dependency failed checksum verification
	ChecksumMismatch ErrorCode = "CHECKSUM_MISMATCH"
	// DownloadFailure indicates a mapping dependency could not be fetched
	DownloadFailure ErrorCode = "DOWNLOAD_FAILURE"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing a configuration value
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Key         string        `json:"key,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// RemapError represents a failure with a stable code, message, and suggestions
type RemapError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a RemapError with the default suggested fixes for its code
func New(code ErrorCode, message string, cause error) *RemapError {
	return &RemapError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *RemapError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *RemapError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RemapError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a RemapError with the same code
func (e *RemapError) Is(target error) bool {
	t, ok := target.(*RemapError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// WithDetails adds details to the error
func (e *RemapError) WithDetails(details interface{}) *RemapError {
	e.Details = details
	return e
}

// HasCode reports whether any error in err's chain is a RemapError with the given code
func HasCode(err error, code ErrorCode) bool {
	var re *RemapError
	for err != nil {
		if !stderrors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.cause
	}
	return false
}

// CodeOf returns the code of the outermost RemapError in err's chain, or InternalError
func CodeOf(err error) ErrorCode {
	var re *RemapError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	UnrecognizedFormat: {
		{
			Type:        RunCommand,
			Command:     "mcremap detect ${archive}",
			Safe:        true,
			Description: "List the signature files found in the archive",
		},
	},
	UnknownNamespace: {
		{
			Type:        RunCommand,
			Command:     "mcremap namespaces",
			Safe:        true,
			Description: "Show the namespaces provided by the configured mappings",
		},
	},
	NoRemapPath: {
		{
			Type:        EditConfig,
			Key:         "manifest",
			Description: "Add a mapping dependency that connects the two namespaces",
		},
	},
	ChecksumMismatch: {
		{
			Type:        RunCommand,
			Command:     "mcremap provide --refresh ${artifact}",
			Safe:        true,
			Description: "Fetch the dependency again",
		},
	},
	DownloadFailure: {
		{
			Type:        RunCommand,
			Command:     "mcremap provide ${artifact}",
			Safe:        true,
			Description: "Retry the request",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
