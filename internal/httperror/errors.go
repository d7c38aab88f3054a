package httperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/guard"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/upstream"
)

// ErrorCode 는 API 오류 코드다.
type ErrorCode string

const (
	// ErrorCodeInternal 는 내부 오류 코드다.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrorCodeValidation 는 검증 오류 코드다.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorCodeMalformedRequest 는 요청 본문 해석 실패 코드다.
	ErrorCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"
	// ErrorCodeUnsupportedTask 는 지원하지 않는 task_type 코드다.
	ErrorCodeUnsupportedTask ErrorCode = "UNSUPPORTED_TASK_TYPE"
	// ErrorCodeUnauthorized 는 인증 오류 코드다.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeHTTPRateLimit 는 요청 제한 오류 코드다.
	ErrorCodeHTTPRateLimit ErrorCode = "HTTP_RATE_LIMIT"
	// ErrorCodeUpstream 는 외부 제공자 오류 코드다.
	ErrorCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrorCodeUpstreamTimeout 는 외부 제공자 타임아웃 코드다.
	ErrorCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	// ErrorCodeContentBlocked 는 금칙어 차단 코드다.
	ErrorCodeContentBlocked ErrorCode = "CONTENT_BLOCKED"
	// ErrorCodeInvalidInput 는 입력 오류 코드다.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// ErrorResponse 는 API 오류 응답 본문이다.
// error 와 details/supported_types 는 기존 클라이언트가 읽는 필드다.
type ErrorResponse struct {
	Error          string   `json:"error"`
	Details        any      `json:"details,omitempty"`
	SupportedTypes []string `json:"supported_types,omitempty"`
	ErrorCode      string   `json:"error_code"`
	ErrorType      string   `json:"error_type"`
	RequestID      *string  `json:"request_id"`
}

// Error 는 내부 표준 오류 타입이다.
type Error struct {
	Code           ErrorCode
	Status         int
	Type           string
	Message        string
	Details        any
	SupportedTypes []string
}

// Error 는 오류 메시지를 반환한다.
func (e *Error) Error() string {
	return e.Message
}

// Response 는 오류를 HTTP 응답으로 변환한다.
func Response(err error, requestID string) (int, ErrorResponse) {
	apiErr := FromError(err)
	if apiErr == nil {
		apiErr = NewInternalError("unknown error")
	}

	var requestIDPtr *string
	if requestID != "" {
		requestIDPtr = &requestID
	}

	return apiErr.Status, ErrorResponse{
		Error:          apiErr.Message,
		Details:        apiErr.Details,
		SupportedTypes: apiErr.SupportedTypes,
		ErrorCode:      string(apiErr.Code),
		ErrorType:      apiErr.Type,
		RequestID:      requestIDPtr,
	}
}

// FromError 는 오류를 내부 오류 타입으로 변환한다.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var blocked *guard.BlockedError
	if errors.As(err, &blocked) {
		return NewContentBlocked(blocked.Terms)
	}

	if errors.Is(err, upstream.ErrRequestTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return NewUpstreamTimeout("Upstream request timed out")
	}

	if errors.Is(err, upstream.ErrMaxRetriesExceeded) {
		return NewUpstreamError("Upstream retries exhausted", http.StatusBadGateway)
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return NewUpstreamError(statusErr.Error(), http.StatusBadGateway)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError(err)
	}

	return NewInternalError(err.Error())
}

// NewInternalError 는 내부 오류를 생성한다.
func NewInternalError(message string) *Error {
	return &Error{
		Code:    ErrorCodeInternal,
		Status:  http.StatusInternalServerError,
		Type:    "InternalError",
		Message: message,
	}
}

// NewPanicRecovered 는 핸들러 패닉을 500 오류로 바꾼다. 복구된 값은 details 에 담긴다.
func NewPanicRecovered(recovered any) *Error {
	return &Error{
		Code:    ErrorCodeInternal,
		Status:  http.StatusInternalServerError,
		Type:    "InternalError",
		Message: "Internal server error",
		Details: fmt.Sprint(recovered),
	}
}

// NewMalformedRequest 는 본문 해석 실패 오류를 생성한다.
// 기존 클라이언트와의 호환을 위해 500 으로 응답하고 원인을 details 에 담는다.
func NewMalformedRequest(err error) *Error {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &Error{
		Code:    ErrorCodeMalformedRequest,
		Status:  http.StatusInternalServerError,
		Type:    "MalformedRequestError",
		Message: "Failed to process request",
		Details: details,
	}
}

// NewUnsupportedTaskType 는 알 수 없는 task_type 오류를 생성한다.
func NewUnsupportedTaskType(taskType string, supported []string) *Error {
	return &Error{
		Code:           ErrorCodeUnsupportedTask,
		Status:         http.StatusBadRequest,
		Type:           "UnsupportedTaskTypeError",
		Message:        fmt.Sprintf("Unsupported task type: %s", taskType),
		SupportedTypes: supported,
	}
}

// NewValidationError 는 검증 오류를 생성한다.
func NewValidationError(err error) *Error {
	return &Error{
		Code:    ErrorCodeValidation,
		Status:  http.StatusBadRequest,
		Type:    "ValidationError",
		Message: "Input validation failed",
		Details: validationDetails(err),
	}
}

// NewInvalidInput 는 입력 오류를 생성한다.
func NewInvalidInput(message string) *Error {
	return &Error{
		Code:    ErrorCodeInvalidInput,
		Status:  http.StatusBadRequest,
		Type:    "InvalidInputError",
		Message: message,
	}
}

// NewUnauthorized 는 인증 오류를 생성한다.
func NewUnauthorized(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeUnauthorized,
		Status:  http.StatusUnauthorized,
		Type:    "UnauthorizedError",
		Message: "Invalid API key",
		Details: details,
	}
}

// NewRateLimitExceeded 는 요청 제한 오류를 생성한다.
func NewRateLimitExceeded(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeHTTPRateLimit,
		Status:  http.StatusTooManyRequests,
		Type:    "HTTPRateLimitExceededError",
		Message: "Rate limit exceeded",
		Details: details,
	}
}

// NewContentBlocked 는 금칙어 차단 오류를 생성한다.
func NewContentBlocked(terms []string) *Error {
	return &Error{
		Code:    ErrorCodeContentBlocked,
		Status:  http.StatusBadRequest,
		Type:    "ContentBlockedError",
		Message: "Input blocked by content guard",
		Details: map[string]any{"terms": terms},
	}
}

// NewUpstreamTimeout 는 외부 제공자 타임아웃 오류를 생성한다.
func NewUpstreamTimeout(message string) *Error {
	return &Error{
		Code:    ErrorCodeUpstreamTimeout,
		Status:  http.StatusGatewayTimeout,
		Type:    "UpstreamTimeoutError",
		Message: message,
	}
}

// NewUpstreamError 는 외부 제공자 오류를 생성한다.
func NewUpstreamError(message string, status int) *Error {
	return &Error{
		Code:    ErrorCodeUpstream,
		Status:  status,
		Type:    "UpstreamError",
		Message: message,
	}
}

// FieldError 는 필드 오류 상세 정보다.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func validationDetails(err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, validationErr := range validationErrors {
			fields = append(fields, FieldError{
				Field:   validationErr.Field(),
				Message: validationErr.Error(),
				Value:   validationErr.Value(),
			})
		}
		return map[string]any{"errors": fields}
	}

	return map[string]any{
		"errors": []FieldError{
			{
				Field:   "body",
				Message: err.Error(),
				Value:   nil,
			},
		},
	}
}
