package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the uniform envelope every endpoint returns, success or
// failure. Data is null on errors.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success writes the envelope with success=true.
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes the envelope with success=false and null data.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// AbortError writes the error envelope and stops the handler chain.
// Middleware uses this so downstream handlers never run on a failed
// auth check.
func AbortError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}
