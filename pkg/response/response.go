package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     []string    `json:"errors,omitempty"`     // ordered validation rule violations
	RequestID  string      `json:"request_id,omitempty"` // correlation id for opaque failures
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// ErrorWithData returns an error response that also carries a payload,
// e.g. the allowed-next states of a rejected workflow transition
func ErrorWithData(statusCode int, err string, data interface{}) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
		Data:       data,
	}
}

// ValidationFailed returns an error response carrying every violated rule
// in evaluation order
func ValidationFailed(statusCode int, errs []string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      "validation failed",
		Errors:     errs,
	}
}

// Opaque returns an error response that leaks no internal detail, only a
// correlation id the caller can quote back
func Opaque(statusCode int, requestID string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      "an unexpected error occurred",
		RequestID:  requestID,
	}
}
