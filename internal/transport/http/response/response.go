package response

import "github.com/gin-gonic/gin"

// OK writes the payload as-is with status 200. Success shapes are part of
// the external contract, so no envelope is added.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Error writes {"detail": message} with the given status. Internal error
// detail stays in the server logs; clients get the status and a short string.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"detail": message})
}
