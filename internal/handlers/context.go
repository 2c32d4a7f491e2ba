package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/managerate/managerate/internal/middleware"
	"github.com/managerate/managerate/pkg/errors"
	"github.com/managerate/managerate/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID extracts the authenticated user id set by the auth middleware.
// It writes a 401 response and returns false when the request is unauthenticated.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}
