package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindingErrors itemizes a gin binding failure per field. Non-validation
// failures (malformed JSON) come back as a single generic entry.
func bindingErrors(err error) []gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []gin.H{{"message": "Invalid request body"}}
	}

	out := make([]gin.H, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, gin.H{
			"field":   strings.ToLower(fe.Field()),
			"message": fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
