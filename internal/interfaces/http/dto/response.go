package dto

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// EntityIDRequest binds the entity path parameter
type EntityIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// EntityFieldRequest binds an entity field path
type EntityFieldRequest struct {
	ID    string `uri:"id" binding:"required,uuid"`
	Field string `uri:"field" binding:"required,max=255"`
}

// OptionRequest binds an option path
type OptionRequest struct {
	ID       string `uri:"id" binding:"required,uuid"`
	OptionID string `uri:"optionId" binding:"required,uuid"`
}

// OptionFieldRequest binds an option field path
type OptionFieldRequest struct {
	ID       string `uri:"id" binding:"required,uuid"`
	OptionID string `uri:"optionId" binding:"required,uuid"`
	Field    string `uri:"field" binding:"required,max=255"`
}
