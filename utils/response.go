package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guesthouse-frontend/apperrors"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

func JSONSuccessMessage(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "message": message, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// JSONAppError renders a classified error with its code and any field-level
// messages, picking the HTTP status from the error code.
func JSONAppError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	body := gin.H{
		"status":  "error",
		"code":    code,
		"message": apperrors.MessageOf(err),
	}
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		body["errors"] = fields
	}
	c.JSON(httpStatusFor(code), body)
}

func httpStatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeServer:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
