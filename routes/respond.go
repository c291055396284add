package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
)

// respondOK writes the standard success envelope.
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// respondError maps an application error onto the standard failure envelope.
// Unrecognized errors surface as 500 with a generic message so internals
// never leak to the client.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	code := apperrors.CodeOf(err)
	status := httpStatus(code)
	message := err.Error()

	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		message = "internal server error"
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code": code,
		},
	})
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code": apperrors.CodeValidation,
		},
	})
}

func httpStatus(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.CodeAuthorization:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
