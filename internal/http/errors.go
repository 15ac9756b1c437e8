package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"sso-backend/internal/security"
	"sso-backend/internal/service"
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// writeError maps service errors to HTTP responses. Unknown errors are logged
// and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: []FieldError{{Field: verr.Field, Reason: verr.Reason}},
		})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: service.ErrUserAlreadyExists.Error()})
	case errors.Is(err, security.ErrPasswordTooLong):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error: "validation failed",
			Fields: []FieldError{{
				Field:  "password",
				Reason: fmt.Sprintf("must be at most %d bytes", security.MaxPasswordBytes),
			}},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeUnauthorized(c, service.ErrInvalidCredentials)
	case errors.Is(err, service.ErrUnauthorized):
		writeUnauthorized(c, service.ErrUnauthorized)
	default:
		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestID),
			"path":       c.Request.URL.Path,
		}).Errorf("request failed: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func writeUnauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Reason: reasonFor(fe)})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// useTagNames makes validation errors report wire names (json, then form) instead of Go field names.
func useTagNames(v binding.StructValidator) {
	engine, ok := v.Engine().(*validator.Validate)
	if !ok {
		return
	}
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}
