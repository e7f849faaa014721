package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an HTTP-aware application error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, msg, nil) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg, nil) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg, nil) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg, nil) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, msg, nil) }
func BadGateway(msg string, err error) *Error {
	return New(http.StatusBadGateway, msg, err)
}
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "internal server error", err)
}

// Status returns the HTTP status carried by err, 500 for plain errors.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Respond writes err as {"error": message}. Internal details of 5xx errors
// are never echoed to the client.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}
	msg := appErr.Message
	if appErr.Code >= 500 && msg == "" {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": msg})
}

// ErrorMiddleware renders the last error attached with c.Error when the
// handler did not write a response itself.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		Respond(c, c.Errors.Last().Err)
	}
}
