package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/auth"
	"github.com/khoahotran/studyplan/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"
)

// AuthMiddleware resolves the bearer token to a user id and stores it on the gin context.
func AuthMiddleware(resolver auth.TokenResolver, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		userID, err := resolver.ResolveUserID(c.Request.Context(), tokenString)
		if err != nil {
			log.Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyUserID, userID)
		c.Next()
	}
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		span := trace.SpanFromContext(c.Request.Context())
		span.RecordError(err)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, err.Error())
		}

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			log.Error("Unhandled request error", err, zap.String("path", c.FullPath()))
			c.JSON(status, gin.H{"error": apperror.ErrInternal.Error(), "message": "An internal server error occurred"})
			return
		}

		body := appErr.ToJSON()
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.FullPath()), zap.Int("status", status))
		} else if appErr.Details != "" {
			body["details"] = appErr.Details
		}
		c.JSON(status, body)
	}
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}

func mustUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("user id not found in context", nil))
	}
	return userID, ok
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Error(apperror.NewInvalidInput(name+" must be a valid UUID", err))
		return uuid.Nil, false
	}
	return id, true
}
