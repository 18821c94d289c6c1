package responses

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ConflictDetails describes a mutation blocked by foreign keys.
type ConflictDetails struct {
	Message     string      `json:"message"`
	Constraints interface{} `json:"constraints,omitempty"`
	Solution    string      `json:"solution"`
}

// Success writes data as the response body.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Message writes {"message": message}.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}

func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// FailWithDetails writes an error body carrying details and an engine code.
func FailWithDetails(c *gin.Context, statusCode int, message string, details interface{}, code string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   message,
		Details: details,
		Code:    code,
	})
}
