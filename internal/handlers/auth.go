package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/dto"
	apierrors "github.com/yukikurage/growmap/internal/errors"
	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/validation"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type registerRequest struct {
	Username string `form:"username" json:"username" binding:"required,username"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	renderPage(c, http.StatusOK, "login.html", "Sign in", nil)
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	renderPage(c, http.StatusOK, "register.html", "Create account", nil)
}

// Register creates an account. Form posts are redirected to the login page;
// JSON clients receive the new user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.registerFailed(c, http.StatusBadRequest, validation.Message(err), req.Username)
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		status, message := errorStatus(err)
		if wantsJSON(c) {
			respondServiceError(c, err)
			return
		}
		h.registerFailed(c, status, message, req.Username)
		return
	}

	logging.Info().Uint64("user_id", user.ID).Msg("User registered")

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) registerFailed(c *gin.Context, status int, message, username string) {
	if wantsJSON(c) {
		apierrors.BadRequest(c, message)
		return
	}
	renderPage(c, status, "register.html", "Create account", gin.H{"Error": message, "Form": gin.H{"Username": username}})
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		if wantsJSON(c) {
			apierrors.BadRequest(c, validation.Message(err))
			return
		}
		renderPage(c, http.StatusBadRequest, "login.html", "Sign in", gin.H{"Error": validation.Message(err)})
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if wantsJSON(c) {
			respondServiceError(c, err)
			return
		}
		status, message := errorStatus(err)
		renderPage(c, status, "login.html", "Sign in", gin.H{"Error": message, "Form": gin.H{"Username": req.Username}})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.ContextKeyUsername, user.Username)
	if err := session.Save(); err != nil {
		logging.Error().Err(err).Msg("Failed to save session")
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, dto.ToUserDTO(*user))
		return
	}
	c.Redirect(http.StatusFound, "/maps")
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		logging.Error().Err(err).Msg("Failed to clear session")
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// Home sends signed-in users to their maps and everyone else to login.
func (h *AuthHandler) Home(c *gin.Context) {
	if sessions.Default(c).Get(constants.ContextKeyUserID) == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, "/maps")
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
