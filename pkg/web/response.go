// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// Data wraps the payload into the common response.
func Data(data any) Response {
	return Response{Data: data}
}

// GetErrorMsg returns a human readable suffix for a failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return fmt.Sprintf(" must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf(" must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf(" must be %s characters long", fe.Param())
	case "numeric":
		return " must contain digits only"
	case "eq":
		return fmt.Sprintf(" must be %s", fe.Param())
	case "disbursement_category":
		return " is not a disbursement category"
	case "method":
		return " is not a supported method"
	case "role":
		return " is not a supported role"
	case "receipt_status":
		return " is not a known receipt status"
	}

	return " is invalid"
}

// ValidationError converts a binding error into the API error message.
func ValidationError(err error) Response {
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		return Response{Error: ve[0].Field() + GetErrorMsg(ve[0])}
	}

	return Error(err)
}
