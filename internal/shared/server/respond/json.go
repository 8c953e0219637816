package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with status. A nil payload is written as an empty object.
func JSON(c *gin.Context, status int, payload any) {
	if payload == nil {
		payload = gin.H{}
	}
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Message writes {"message": msg} with 200.
func Message(c *gin.Context, msg string) {
	OK(c, gin.H{"message": msg})
}
