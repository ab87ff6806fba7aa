package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON body of plain success and client-error responses.
type Response struct {
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// FailureResponse reports a failed operation together with its cause. The
// error key is always present, even when the cause has no text.
type FailureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// PartialResponse reports a success whose side effect failed, echoing what
// was saved.
type PartialResponse struct {
	Message   string      `json:"message"`
	Error     string      `json:"error"`
	SavedData interface{} `json:"savedData"`
}

// Success sends a message-only success response
func Success(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Message: message})
}

// SuccessWithData sends a success response with a data payload
func SuccessWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{Message: message, Data: data})
}

// Partial sends a success status whose body also reports a failed side effect.
func Partial(c *gin.Context, code int, message, errText string, saved interface{}) {
	c.JSON(code, PartialResponse{
		Message:   message,
		Error:     errText,
		SavedData: saved,
	})
}

// Failure sends an error response that always carries the cause text.
func Failure(c *gin.Context, code int, message, errText string) {
	c.JSON(code, FailureResponse{
		Message: message,
		Error:   errText,
	})
}

// Error sends an error response; errText is omitted when empty.
func Error(c *gin.Context, code int, message string, errText string) {
	c.JSON(code, Response{
		Message: message,
		Error:   errText,
	})
}
