package v1

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/config"
	"github.com/glucotrack/glucotrack/internal/domain/doctor"
	"github.com/glucotrack/glucotrack/internal/service"
	"github.com/glucotrack/glucotrack/internal/session"
	"github.com/glucotrack/glucotrack/pkg/auth"
	"github.com/glucotrack/glucotrack/pkg/metrics"
)

type AuthHandler struct {
	authSvc    *service.AuthService
	sessions   *session.Manager
	jwtManager *auth.JWTManager
	sessionCfg config.SessionConfig
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAuthHandler(
	authSvc *service.AuthService,
	sessions *session.Manager,
	jwtManager *auth.JWTManager,
	sessionCfg config.SessionConfig,
	m *metrics.Collector,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authSvc:    authSvc,
		sessions:   sessions,
		jwtManager: jwtManager,
		sessionCfg: sessionCfg,
		metrics:    m,
		log:        log,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterWeb handles the registration form. Outcomes travel back to the
// form page as query parameters, the page itself is rendered elsewhere.
func (h *AuthHandler) RegisterWeb(c *gin.Context) {
	cmd := &doctor.RegisterCommand{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	if _, err := h.authSvc.Register(c.Request.Context(), cmd); err != nil {
		redirectWithError(c, "/register", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?success="+url.QueryEscape("Account created, you can sign in now"))
}

// LoginWeb handles the login form and binds a fresh server-side session to
// the browser on success.
func (h *AuthHandler) LoginWeb(c *gin.Context) {
	d, err := h.authSvc.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if h.metrics != nil {
			h.metrics.FailedLoginsTotal.Inc()
		}
		c.Redirect(http.StatusSeeOther, "/login?error="+url.QueryEscape("Invalid credentials"))
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), d.ID, d.Username)
	if err != nil {
		h.log.Error("failed to create session", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/login?error="+url.QueryEscape("Something went wrong, try again"))
		return
	}

	h.setSessionCookie(c, token, int(h.sessionCfg.TTL.Seconds()))
	c.Redirect(http.StatusSeeOther, "/patients")
}

// Logout destroys the server-side session state, not just the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessionCfg.CookieName); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.log.Error("failed to destroy session", zap.Error(err))
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/login")
}

// RegisterAPI is the JSON variant of registration.
func (h *AuthHandler) RegisterAPI(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.authSvc.Register(c.Request.Context(), &doctor.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, d)
}

// LoginAPI authenticates and issues a bearer token pair for API clients.
func (h *AuthHandler) LoginAPI(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.FailedLoginsTotal.Inc()
		}
		respondServiceError(c, err)
		return
	}

	pair, err := h.jwtManager.GenerateTokenPair(&auth.Claims{DoctorID: d.ID, Username: d.Username})
	if err != nil {
		h.log.Error("failed to generate token pair", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}

// RefreshAPI exchanges a valid refresh token for a new pair.
func (h *AuthHandler) RefreshAPI(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondServiceError(c, service.ErrInvalidCredentials)
		return
	}

	pair, err := h.jwtManager.GenerateTokenPair(claims)
	if err != nil {
		h.log.Error("failed to generate token pair", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCfg.CookieName, token, maxAge, "/", "", h.sessionCfg.Secure, true)
}
