package dtos

// ValidationErrorDetail is one entry of a structured validation error response.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
