package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError maps an AppError kind to its HTTP status. Mismatch details
// (computed total vs received) ride along in Data so the terminal can show
// an actionable message.
func RespondAppError(c *gin.Context, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		RespondError(c, 500, err)
		return
	}
	c.JSON(appErr.HTTPStatus(), JSONResponse{
		Status:  false,
		Message: appErr.Message,
		Data:    appErr.Detail,
	})
}
