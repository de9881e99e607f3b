package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a JSON body with success set to true alongside the given
// fields.
func Success(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func OK(c *gin.Context, fields gin.H) {
	Success(c, http.StatusOK, fields)
}

func Created(c *gin.Context, fields gin.H) {
	Success(c, http.StatusCreated, fields)
}

// Message writes a success body carrying only a human readable message.
func Message(c *gin.Context, message string) {
	OK(c, gin.H{"message": message})
}

// List writes a collection under key with its count.
func List[T any](c *gin.Context, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	OK(c, gin.H{key: items, "count": len(items)})
}
