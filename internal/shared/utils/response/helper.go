package response

import (
	"playpark/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// Success writes the standard success envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error writes the standard error envelope from a typed error. Upstream and
// storage details are replaced with a generic message; the stable error code
// survives so clients can branch on it.
func Error(c *gin.Context, err error) {
	RespondJSON(c, "error", apperr.HTTPStatus(err), apperr.Public(err), nil, map[string]interface{}{
		"code": apperr.CodeOf(err),
	})
}
