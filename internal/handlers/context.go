package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/andympr/my-wedding-backend/internal/middleware"
)

func requestContext(c *gin.Context) context.Context {
	if c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated user's id, nil outside an
// authenticated request.
func currentUserID(c *gin.Context) *string {
	v, ok := c.Get(middleware.CtxUserIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}
