package http

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"sso-backend/internal/domain"
	"sso-backend/internal/oauth"
	"sso-backend/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	provider oauth.ExternalIdentityProvider
	logger   *logrus.Logger
}

var registerTagNames sync.Once

// NewHandler builds the HTTP surface. provider may be nil, in which case
// external sign-in routes are not registered.
func NewHandler(auth service.AuthService, provider oauth.ExternalIdentityProvider, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	registerTagNames.Do(func() { useTagNames(binding.Validator) })
	return &Handler{
		auth:     auth,
		provider: provider,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), accessLogMiddleware(h.logger), corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/token", h.token)
		if h.provider != nil {
			name := string(h.provider.Name())
			auth.GET("/"+name+"/login", h.externalLogin)
			auth.GET("/"+name+"/callback", h.externalCallback)
		}
	}

	users := router.Group("/users", h.requireAuth())
	{
		users.GET("/me", h.me)
		users.GET("", h.listUsers)
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required,max=200"`
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Provider string `json:"provider"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		writeBindError(c, err)
		return
	}

	tok, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenToResponse(tok))
}

func (h *Handler) me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		writeUnauthorized(c, service.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) listUsers(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		h.writeError(c, &service.ValidationError{Field: "skip", Reason: "must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultListLimit)))
	if err != nil {
		h.writeError(c, &service.ValidationError{Field: "limit", Reason: "must be an integer"})
		return
	}

	users, err := h.auth.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Provider: string(user.Provider),
	}
}

func tokenToResponse(tok *service.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken: tok.Token,
		TokenType:   tok.TokenType,
	}
}
