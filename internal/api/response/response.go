package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes surfaced to clients. Stable; message text
// is localized and may change.
const (
	CodeInvalidFormat  = "invalid_format"
	CodeNotFound       = "code_not_found"
	CodeBlocked        = "code_blocked"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal_error"
	CodeInvalidPayload = "invalid_payload"
)

type Error struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Fail(c *gin.Context, httpStatus int, errCode, message string) {
	c.JSON(httpStatus, Error{
		Status:  "error",
		Code:    errCode,
		Message: message,
	})
}

// FailRetryAfter is Fail with a Retry-After header in seconds.
func FailRetryAfter(c *gin.Context, httpStatus int, errCode, message string, retryAfter int) {
	if retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}
	Fail(c, httpStatus, errCode, message)
}

func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"status": "ok"}
	for key, value := range payload {
		body[key] = value
	}
	c.JSON(200, body)
}
