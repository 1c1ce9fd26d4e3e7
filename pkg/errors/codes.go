package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "<MODULE>_<NNN>" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common Error Codes
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_005"
	ErrCodeTimeout       ErrorCode = "COMMON_009"
	ErrCodeValidation    ErrorCode = "COMMON_010"
	ErrCodeSerialization ErrorCode = "COMMON_011"
	ErrCodeCacheError    ErrorCode = "COMMON_013"
	ErrCodeConfig        ErrorCode = "COMMON_017"
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidFormat ErrorCode = "MOL_003"
	ErrCodeMoleculeParsingFailed ErrorCode = "MOL_006"
)

// Notation Module Error Codes
const (
	ErrCodeUnrepresentableChirality ErrorCode = "NOT_001"
	ErrCodeIncompatibleCisTrans     ErrorCode = "NOT_002"
	ErrCodeUnsafePseudoLabel        ErrorCode = "NOT_003"
	ErrCodeAtomNotRepresentable     ErrorCode = "NOT_004"
	ErrCodeInvalidHydrogenCount     ErrorCode = "NOT_005"
	ErrCodeOperationLimitExceeded   ErrorCode = "NOT_006"
)

// Exit statuses used by the CLI.
const (
	ExitOK          = 0
	ExitServerError = 1
	ExitClientError = 2
)

// ErrorCodeExitStatus maps ErrorCodes to CLI exit statuses.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeInternal:      ExitServerError,
	ErrCodeBadRequest:    ExitClientError,
	ErrCodeNotFound:      ExitClientError,
	ErrCodeTimeout:       ExitServerError,
	ErrCodeValidation:    ExitClientError,
	ErrCodeSerialization: ExitServerError,
	ErrCodeCacheError:    ExitServerError,
	ErrCodeConfig:        ExitClientError,

	ErrCodeMoleculeInvalidFormat: ExitClientError,
	ErrCodeMoleculeParsingFailed: ExitClientError,

	ErrCodeUnrepresentableChirality: ExitClientError,
	ErrCodeIncompatibleCisTrans:     ExitClientError,
	ErrCodeUnsafePseudoLabel:        ExitClientError,
	ErrCodeAtomNotRepresentable:     ExitClientError,
	ErrCodeInvalidHydrogenCount:     ExitClientError,
	ErrCodeOperationLimitExceeded:   ExitServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeNotFound:      "resource not found",
	ErrCodeTimeout:       "operation timed out",
	ErrCodeValidation:    "validation failed",
	ErrCodeSerialization: "serialization failed",
	ErrCodeCacheError:    "cache error",
	ErrCodeConfig:        "invalid configuration",

	ErrCodeMoleculeInvalidFormat: "unsupported molecule format",
	ErrCodeMoleculeParsingFailed: "failed to parse molecule",

	ErrCodeUnrepresentableChirality: "chirality not possible on atom",
	ErrCodeIncompatibleCisTrans:     "incompatible cis-trans configuration",
	ErrCodeUnsafePseudoLabel:        "pseudo-atom label contains unsupported characters",
	ErrCodeAtomNotRepresentable:     "atom cannot be written in the requested notation",
	ErrCodeInvalidHydrogenCount:     "hydrogen count cannot be determined",
	ErrCodeOperationLimitExceeded:   "operation limit exceeded",
}

// ExitStatusForCode returns the CLI exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if code == CodeOK {
		return ExitOK
	}
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return ExitServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the failure was caused by the input.
func IsClientError(code ErrorCode) bool {
	return ExitStatusForCode(code) == ExitClientError
}

// IsServerError returns true if the failure was not caused by the input.
func IsServerError(code ErrorCode) bool {
	return ExitStatusForCode(code) == ExitServerError
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
