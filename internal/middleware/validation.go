package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hoax-server/internal/schemas"
	"hoax-server/internal/utils"
	"hoax-server/internal/validators"
)

// ValidateAndSanitizeStruct binds the request body into the given struct,
// strips markup from its string fields and validates it. On validation
// failure the response carries a field to message mapping, one message per
// field, first failing rule wins.
func ValidateAndSanitizeStruct(template interface{}) gin.HandlerFunc {
	structType := reflect.TypeOf(template).Elem()

	return func(c *gin.Context) {
		// Fresh instance per request, the template only provides the type.
		obj := reflect.New(structType).Interface()

		if err := c.ShouldBindJSON(obj); err != nil {
			utils.AbortWithError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		v := validators.GetValidator()
		if err := v.SanitizeData(obj); err != nil {
			utils.AbortWithError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		if err := v.Validate.Struct(obj); err != nil {
			validationErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				utils.AbortWithError(c, schemas.BadRequest, http.StatusBadRequest, err)
				return
			}

			fieldErrors := make(map[string]string)
			for _, fieldErr := range validationErrs {
				field := fieldErr.Field()
				if _, seen := fieldErrors[field]; seen {
					continue
				}
				fieldErrors[field] = messageForTag(fieldErr)
			}

			utils.WriteAndLogValidationError(c, http.StatusBadRequest, fieldErrors)
			c.Abort()
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}

func messageForTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fieldErr.Param() + " characters long"
	case "max":
		return "Must be at most " + fieldErr.Param() + " characters long"
	case "username_validation":
		return "May only contain letters, digits, '.', '-' and '_'"
	case "password_validation":
		return "Must contain at least one uppercase letter, one lowercase letter and one digit"
	case "base64":
		return "Must be base64 encoded"
	default:
		return "Invalid value"
	}
}
