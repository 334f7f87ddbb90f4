package utils

import (
	"time"

	"github.com/gin-gonic/gin"

	"hoax-server/internal/schemas"
)

// WriteAndLogResponse writes the response object as JSON with the given status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the
// specified status code, the stable error code and message, the request path
// and a timestamp.
func WriteAndLogError(ctx *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(ctx, "error", "Returning "+customErr.Code+" / "+customErr.Message, err)
	ctx.JSON(statusCode, newErrorDTO(ctx, customErr))
}

// WriteAndLogValidationError sends a 400 response carrying the field to
// message mapping produced by the validator, one message per field.
func WriteAndLogValidationError(ctx *gin.Context, statusCode int, fieldErrors map[string]string) {
	LogMessageWithFields(ctx, "error", "Returning "+schemas.ValidationFailed.Code+" with field errors")
	errorDto := newErrorDTO(ctx, schemas.ValidationFailed)
	errorDto.ValidationErrors = fieldErrors
	ctx.JSON(statusCode, errorDto)
}

// AbortWithError behaves like WriteAndLogError but also aborts the middleware chain.
func AbortWithError(ctx *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(ctx, "error", "Aborting with "+customErr.Code+" / "+customErr.Message, err)
	ctx.AbortWithStatusJSON(statusCode, newErrorDTO(ctx, customErr))
}

// GetPrincipal returns the authentication principal resolved for the request.
// An absent value is reported as the anonymous principal.
func GetPrincipal(ctx *gin.Context) *schemas.Principal {
	value, exists := ctx.Get(PrincipalKey.String())
	if !exists {
		return &schemas.Principal{Kind: schemas.PrincipalAnonymous}
	}

	principal, ok := value.(*schemas.Principal)
	if !ok || principal == nil {
		return &schemas.Principal{Kind: schemas.PrincipalAnonymous}
	}

	return principal
}

func newErrorDTO(ctx *gin.Context, customErr *schemas.CustomError) *schemas.ErrorDTO {
	return &schemas.ErrorDTO{
		Error:     *customErr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      ctx.Request.URL.Path,
	}
}
