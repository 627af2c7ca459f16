package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If the email is registered, a reset code has been sent."

// userResponse is the public shape of a user. It never carries credentials.
type userResponse struct {
	UserID      string              `json:"user_id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	Status      string              `json:"status"`
	RiskProfile *models.RiskProfile `json:"risk_profile,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		UserID:      u.UserID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		RiskProfile: u.RiskProfile,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func toUserResponses(users []*models.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	user, err := s.app.AuthService.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]interface{}{
		"user_id": user.UserID,
		"user":    toUserResponse(user),
	})
}

// handleLogin handles POST /api/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	user, token, err := s.app.AuthService.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(s.app.Config.Auth.GetTokenExpiry().Seconds()),
		"user":         toUserResponse(user),
	})
}

// handleMe handles GET /api/auth/me: the caller and their latest portfolio.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	uc := common.UserContextFromContext(ctx)

	user, err := s.app.AuthService.GetUser(ctx, uc.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var latest *models.Portfolio
	latest, err = s.app.PortfolioService.GetForUser(ctx, uc.UserID, uc.Role, uc.UserID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		s.writeServiceError(w, r, err)
		return
	}

	WriteOK(w, http.StatusOK, map[string]interface{}{
		"user":      toUserResponse(user),
		"portfolio": latest,
	})
}

// handleForgotPassword handles POST /api/auth/forgot-password.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if err := s.app.AuthService.ForgotPassword(r.Context(), body.Email); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]string{"message": forgotPasswordMessage})
}

// handleResetPassword handles POST /api/auth/reset-password.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if err := s.app.AuthService.ResetPassword(r.Context(), body.Email, body.Token, body.NewPassword); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// handleRiskProfile handles POST /api/risk-profile for the caller.
func (s *Server) handleRiskProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, http.MethodPut) {
		return
	}
	var profile models.RiskProfile
	if !DecodeJSON(w, r, &profile) {
		return
	}

	uc := common.UserContextFromContext(r.Context())
	user, err := s.app.AuthService.SaveRiskProfile(r.Context(), uc.UserID, profile)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]interface{}{
		"user_id":      user.UserID,
		"risk_profile": user.RiskProfile,
	})
}
