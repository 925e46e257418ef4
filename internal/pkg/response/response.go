// Package response wraps the webapi envelope helpers so every handler
// emits the same {code, message, data} body.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// statusError carries a stable numeric code alongside the message, which
// is what the proxyutil envelope extracts.
type statusError struct {
	code uint32
	msg  string
}

func (e statusError) Error() string { return e.msg }

func (e statusError) Code() uint32 { return e.code }

func AsCodeErr(code uint32, msg string) error {
	return statusError{code: code, msg: msg}
}

// Success writes the payload inside the standard envelope.
func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// Error writes a failure envelope. The HTTP status stays 200 and clients
// branch on the embedded code.
func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}
