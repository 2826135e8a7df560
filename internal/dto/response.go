package dto

import "github.com/SscSPs/user_accounts_service/internal/apperrors"

// APIResponse is the envelope every successful response is wrapped in.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// NewAPIResponse wraps data in the success envelope.
func NewAPIResponse(statusCode int, data any, message string) APIResponse {
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

// ErrorResponse is the envelope for failures.
type ErrorResponse struct {
	StatusCode int                    `json:"statusCode"`
	Message    string                 `json:"message"`
	Success    bool                   `json:"success"`
	Errors     []apperrors.FieldError `json:"errors,omitempty"`
}

// NewErrorResponse builds a failure envelope.
func NewErrorResponse(statusCode int, message string, fields []apperrors.FieldError) ErrorResponse {
	return ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
		Errors:     fields,
	}
}
