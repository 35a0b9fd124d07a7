package models

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Page    int         `json:"page,omitempty"`
	Limit   int         `json:"limit,omitempty"`
	Total   int         `json:"total,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// ErrorResponse is the uniform failure body: {"success": false, "message": "..."}.
func ErrorResponse(message string) ApiResponse {
	return ApiResponse{
		Success: false,
		Message: message,
	}
}

// ErrorResponseWithDetail adds a machine-oriented detail, e.g. validation output.
func ErrorResponseWithDetail(message, detail string) ApiResponse {
	return ApiResponse{
		Success: false,
		Message: message,
		Error:   detail,
	}
}
