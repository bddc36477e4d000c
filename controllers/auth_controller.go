package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guesthouse-frontend/apperrors"
	"guesthouse-frontend/middleware"
	"guesthouse-frontend/services"
	"guesthouse-frontend/utils"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type AuthController struct {
	Hub    *services.Hub
	Logger *zap.Logger
}

func NewAuthController(hub *services.Hub, logger *zap.Logger) *AuthController {
	return &AuthController{Hub: hub, Logger: logger}
}

func (ac *AuthController) userSession(c *gin.Context) *services.UserSession {
	return ac.Hub.Get(c.Request.Context(), middleware.SessionID(c))
}

// Login authenticates the session. If a validated booking was parked behind
// the authentication gate, it is resubmitted automatically and the outcome
// travels back in the same response.
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Password == "" {
		utils.JSONError(c, http.StatusBadRequest, "email and password required")
		return
	}

	us := ac.userSession(c)
	user, err := us.Session.Login(c.Request.Context(), email, payload.Password)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}

	data := gin.H{"user": user}
	ac.resumePending(c, us, data)
	utils.JSONSuccess(c, http.StatusOK, data)
}

func (ac *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.Email) == "" ||
		payload.Password == "" || strings.TrimSpace(payload.Phone) == "" {
		utils.JSONError(c, http.StatusBadRequest, "name, email, password and phone required")
		return
	}

	us := ac.userSession(c)
	user, err := us.Session.Register(c.Request.Context(), services.RegisterInput{
		Name:     strings.TrimSpace(payload.Name),
		Email:    strings.TrimSpace(payload.Email),
		Password: payload.Password,
		Phone:    strings.TrimSpace(payload.Phone),
		Address:  strings.TrimSpace(payload.Address),
	})
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}

	data := gin.H{"user": user}
	ac.resumePending(c, us, data)
	utils.JSONSuccess(c, http.StatusCreated, data)
}

// resumePending replays a pending booking after a successful login or
// registration. A failed replay must not fail the authentication itself:
// the draft is kept and the form reopens for a manual retry.
func (ac *AuthController) resumePending(c *gin.Context, us *services.UserSession, data gin.H) {
	outcome, err := us.Flow.ResumeAfterAuth(c.Request.Context())
	if err != nil {
		ac.Logger.Warn("automatic booking resubmission failed",
			zap.String("code", string(apperrors.CodeOf(err))))
		data["pendingBookingError"] = apperrors.MessageOf(err)
		return
	}
	if outcome != nil && outcome.Booking != nil {
		data["pendingBooking"] = outcome.Booking
	}
}

func (ac *AuthController) Logout(c *gin.Context) {
	us := ac.userSession(c)
	us.Session.Logout(c.Request.Context())
	utils.JSONSuccessMessage(c, http.StatusOK, "Logged out.", nil)
}

func (ac *AuthController) Me(c *gin.Context) {
	us := ac.userSession(c)
	user := us.Session.CurrentUser()
	if user == nil {
		utils.JSONAppError(c, apperrors.New(apperrors.ErrCodeAuthRequired, "Authentication failed. Please log in again."))
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	us := ac.userSession(c)
	user, err := us.Session.UpdateProfile(c.Request.Context(), updates)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"user": user})
}
