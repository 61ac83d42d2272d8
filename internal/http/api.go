package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"authgate/internal/service"
	"authgate/internal/session"
	"authgate/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	cookies *session.CookieStore
	tokens  *token.Codec
	logger  *logrus.Logger
}

func NewHandler(auth service.AuthService, cookies *session.CookieStore, tokens *token.Codec, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:    auth,
		cookies: cookies,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)
		api.GET("/auth/me", h.me)
		api.GET("/auth/email-available", h.emailAvailable)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.renderAuthError(c, err)
		return
	}

	h.cookies.Set(c, sess.Token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    sess.User,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.renderAuthError(c, err)
		return
	}

	h.cookies.Set(c, sess.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    sess.User,
	})
}

// logout removes the client's copy of the token. The token itself stays
// valid until expiry; there is no server-side revocation list.
func (h *Handler) logout(c *gin.Context) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) me(c *gin.Context) {
	claim, ok := h.currentClaim(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": claim.UserID,
		"email":   claim.Email,
	})
}

func (h *Handler) emailAvailable(c *gin.Context) {
	email := c.Query("email")
	c.JSON(http.StatusOK, gin.H{
		"available": h.auth.EmailAvailable(c.Request.Context(), email),
	})
}

// currentClaim resolves the request's session cookie into a verified claim.
// Absent, expired, and tampered tokens all read as "no session".
func (h *Handler) currentClaim(c *gin.Context) (token.Claim, bool) {
	tok := h.cookies.Get(c)
	if tok == "" {
		return token.Claim{}, false
	}
	claim, err := h.tokens.Verify(tok)
	if err != nil {
		return token.Claim{}, false
	}
	return claim, true
}

func (h *Handler) renderAuthError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":        "Validation failed",
			"field_errors": vErr.Fields,
		})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	default:
		h.logger.WithError(err).Error("auth request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
	}
}
