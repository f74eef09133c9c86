// Package result defines the uniform success/failure envelope returned
// by every lookup operation. An envelope is created at each boundary and
// propagated unchanged; callers never see a raw error.
package result

// Machine-readable error codes surfaced by the service.
const (
	CodeTitleRequired    = "TITLE_REQUIRED"
	CodeWorkIDRequired   = "WORK_ID_REQUIRED"
	CodeNotFound         = "NOT_FOUND"
	CodeExternalAPIError = "EXTERNAL_API_ERROR"
	CodeNetworkError     = "NETWORK_ERROR"
	CodeInvalidResponse  = "INVALID_RESPONSE"
	CodeUnexpectedError  = "UNEXPECTED_ERROR"
)

// Result is the operation envelope. Exactly one of Value or the error
// fields is meaningful depending on IsSuccess. Construct through Success
// or Failure and treat as immutable afterwards.
type Result[T any] struct {
	IsSuccess  bool   `json:"isSuccess"`
	Value      T      `json:"value"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"errorCode"`
}

// Success wraps a value in a successful envelope with status 200.
func Success[T any](value T) *Result[T] {
	return &Result[T]{
		IsSuccess:  true,
		Value:      value,
		StatusCode: 200,
	}
}

// Failure builds a failed envelope. Status 500 is the conventional
// default for unclassified failures.
func Failure[T any](message string, statusCode int, errorCode string) *Result[T] {
	if statusCode == 0 {
		statusCode = 500
	}
	return &Result[T]{
		IsSuccess:  false,
		Error:      message,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}
