package common

import "github.com/gin-gonic/gin"

// All JSON responses share one envelope: code 0 means success, anything
// else is an application error code paired with an HTTP status.
func OK(c *gin.Context, data any) {
	c.JSON(200, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

// Accepted is OK with a 202 status, for work queued rather than completed.
func Accepted(c *gin.Context, data any) {
	c.JSON(202, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
