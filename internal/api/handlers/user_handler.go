package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/auth"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/mailer"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

type UserHandler struct {
	userRepo   *repositories.UserRepository
	notifRepo  *repositories.NotificationRepository
	verifier   *auth.VerificationService
	dispatcher *mailer.Dispatcher
	checker    *authz.Checker
}

func NewUserHandler(userRepo *repositories.UserRepository, notifRepo *repositories.NotificationRepository, verifier *auth.VerificationService, dispatcher *mailer.Dispatcher, checker *authz.Checker) *UserHandler {
	return &UserHandler{
		userRepo:   userRepo,
		notifRepo:  notifRepo,
		verifier:   verifier,
		dispatcher: dispatcher,
		checker:    checker,
	}
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,mailbox,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
}

// Create registers an inactive account and sends its verification email.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     false,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := h.userRepo.Create(r.Context(), user); err != nil {
		if err == repositories.ErrDuplicate {
			errors.Write(w, errors.Integrity(errors.ErrCodeDuplicateEmail, "A user with this email already exists"))
			return
		}
		errors.Write(w, errors.Internal(err))
		return
	}

	uidb64, token, err := h.verifier.Generate(user)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	notify(r.Context(), h.notifRepo, user.ID, models.NotificationVerificationSent, map[string]string{"email": user.Email})
	h.dispatcher.Dispatch(mailer.VerificationMessage(user.Email, user.FirstName, h.verifier.URL(uidb64, token)))

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": user.ID})
}

type VerifyEmailRequest struct {
	UIDB64 string `json:"uidb64" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// VerifyEmail activates the account named by uidb64 when token is valid for it.
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	invalid := errors.Validation("Invalid or expired verification link", nil)

	userID, err := h.verifier.Subject(req.UIDB64, req.Token)
	if err != nil {
		errors.Write(w, invalid)
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if err := h.verifier.Check(user, req.Token); err != nil {
		errors.Write(w, invalid)
		return
	}

	if err := h.userRepo.Activate(r.Context(), user.ID); err != nil {
		if err == repositories.ErrNotFound {
			// Activated or deleted concurrently.
			errors.Write(w, invalid)
			return
		}
		errors.Write(w, errors.Internal(err))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *UserHandler) authorize(r *http.Request, requester Requester, action authz.Action) (string, error) {
	userID := param(r, "user_id")
	err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{UserID: userID}, action, authz.OwnsAccount)
	return userID, err
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	userID, err := h.authorize(r, requester, authz.ActionRead)
	if err != nil {
		errors.Write(w, err)
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if user == nil {
		errors.Write(w, errors.NotFound("User"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=150"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// Update changes the whitelisted profile fields present in the body.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request, requester Requester) {
	userID, err := h.authorize(r, requester, authz.ActionUpdate)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req UpdateUserRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if user == nil {
		errors.Write(w, errors.NotFound("User"))
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			errors.Write(w, errors.Internal(err))
			return
		}
		user.PasswordHash = hash
	}

	if err := h.userRepo.UpdateProfile(r.Context(), user); err != nil {
		errors.Write(w, storeError(err, "User"))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, requester Requester) {
	userID, err := h.authorize(r, requester, authz.ActionDelete)
	if err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.userRepo.Delete(r.Context(), userID); err != nil {
		errors.Write(w, storeError(err, "User"))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
