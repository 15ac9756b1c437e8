package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

func (h *Handler) externalLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthorizationURL(state))
}

func (h *Handler) externalCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid oauth state"})
		return
	}
	// single use
	c.SetCookie(oauthStateCookie, "", -1, "/auth", "", c.Request.TLS != nil, true)

	if providerErr := c.Query("error"); providerErr != "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "external sign-in was not completed"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: []FieldError{{Field: "code", Reason: "is required"}},
		})
		return
	}

	identity, err := h.provider.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.logger.WithField("request_id", c.GetString(ctxRequestID)).Warnf("external code exchange: %v", err)
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "external sign-in failed"})
		return
	}

	tok, err := h.auth.LoginExternal(c.Request.Context(), identity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenToResponse(tok))
}
