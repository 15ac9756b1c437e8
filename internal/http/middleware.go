package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sso-backend/internal/domain"
	"sso-backend/internal/service"
)

const (
	headerRequestID = "X-Request-Id"

	ctxRequestID   = "request_id"
	ctxCurrentUser = "current_user"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "WWW-Authenticate, "+headerRequestID)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

func accessLogMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

// requireAuth resolves the bearer token into a user and stores it on the context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			writeUnauthorized(c, service.ErrUnauthorized)
			return
		}

		user, err := h.auth.ResolveToken(c.Request.Context(), token)
		if err != nil {
			h.writeError(c, err)
			return
		}

		c.Set(ctxCurrentUser, user)
		c.Next()
	}
}

// CurrentUser returns the user bound by the auth guard.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, error) {
	auth := strings.TrimSpace(header)
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
