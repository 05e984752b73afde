package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/repositories"
)

type NotificationHandler struct {
	notifRepo *repositories.NotificationRepository
	checker   *authz.Checker
}

func NewNotificationHandler(notifRepo *repositories.NotificationRepository, checker *authz.Checker) *NotificationHandler {
	return &NotificationHandler{notifRepo: notifRepo, checker: checker}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request, requester Requester) {
	userID := param(r, "user_id")
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{UserID: userID}, authz.ActionList, authz.OwnsAccount); err != nil {
		errors.Write(w, err)
		return
	}

	notifications, err := h.notifRepo.ListByUser(r.Context(), userID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	userID := param(r, "user_id")
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{UserID: userID}, authz.ActionRead, authz.OwnsAccount); err != nil {
		errors.Write(w, err)
		return
	}

	n, err := h.notifRepo.GetByID(r.Context(), userID, param(r, "notification_id"))
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if n == nil {
		errors.Write(w, errors.NotFound("Notification"))
		return
	}

	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request, requester Requester) {
	userID := param(r, "user_id")
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{UserID: userID}, authz.ActionDelete, authz.OwnsAccount); err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.notifRepo.Delete(r.Context(), userID, param(r, "notification_id")); err != nil {
		errors.Write(w, storeError(err, "Notification"))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
