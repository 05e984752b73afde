package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/auth"
	"greekgeeks/internal/platform/repositories"
)

type AuthHandler struct {
	userRepo *repositories.UserRepository
	tokenSvc *auth.TokenService
}

func NewAuthHandler(userRepo *repositories.UserRepository, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		tokenSvc: tokenSvc,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_uuid"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		errors.Write(w, errors.Unauthenticated("Invalid credentials"))
		return
	}
	if !user.IsActive {
		errors.Write(w, errors.Unauthenticated("Account has not been verified"))
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	refreshToken, err := h.tokenSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	claims, err := h.tokenSvc.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		errors.Write(w, errors.Unauthenticated("Invalid refresh token"))
		return
	}

	// The account may have been deleted since the refresh token was issued.
	user, err := h.userRepo.GetByID(r.Context(), claims.Subject)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if user == nil || !user.IsActive {
		errors.Write(w, errors.Unauthenticated("User not found"))
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{AccessToken: accessToken})
}
