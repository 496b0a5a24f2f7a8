package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUpstreamFailure  = "UPSTREAM_FAILURE"
	ErrCodeNotReady         = "NOT_READY"
)

// Validation errors
var (
	ErrInvalidKnowledgeSource    = NewDomainError(ErrCodeValidation, "invalid knowledge source")
	ErrInvalidTrainingPhase      = NewDomainError(ErrCodeValidation, "invalid training phase")
	ErrInvalidIngestionJobStatus = NewDomainError(ErrCodeValidation, "invalid ingestion job status")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrKnowledgeUnitNotFound    = NewDomainError(ErrCodeNotFound, "knowledge unit not found")
	ErrExpertNotFound           = NewDomainError(ErrCodeNotFound, "expert not found")
	ErrDocumentNotFound         = NewDomainError(ErrCodeNotFound, "document not found")
	ErrTrainingQuestionNotFound = NewDomainError(ErrCodeNotFound, "training question not found")
	ErrAPIKeyNotFound           = NewDomainError(ErrCodeNotFound, "api key not found")
)

// Already exists errors
var (
	ErrExpertAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "expert already exists")
	ErrDocumentAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "document already exists")
	ErrAPIKeyAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Readiness errors: expected persona states, not system failures. Each maps
// to a distinct user-facing message in the response generator.
var (
	ErrProfileIncomplete    = NewDomainError(ErrCodeNotReady, "expert profile is missing required fields")
	ErrKnowledgeBaseEmpty   = NewDomainError(ErrCodeNotReady, "expert has no recorded knowledge areas")
	ErrQuestionAlreadyAnswered = NewDomainError(ErrCodeInvalidOperation, "training question already answered")
)

// Upstream errors
var (
	ErrEmbeddingFailed  = NewDomainError(ErrCodeUpstreamFailure, "embedding service call failed")
	ErrVectorStoreFailed = NewDomainError(ErrCodeUpstreamFailure, "vector store call failed")
	ErrGenerationFailed = NewDomainError(ErrCodeUpstreamFailure, "language model call failed")
)
