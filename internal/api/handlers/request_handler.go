package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

// RequestHandler serves membership requests. Only admins see and accept requests;
// a user may file a request for themselves and withdraw it.
type RequestHandler struct {
	requestRepo *repositories.RequestRepository
	orgRepo     *repositories.OrganizationRepository
	userRepo    *repositories.UserRepository
	notifRepo   *repositories.NotificationRepository
	auditLog    *audit.Logger
	checker     *authz.Checker
}

func NewRequestHandler(requestRepo *repositories.RequestRepository, orgRepo *repositories.OrganizationRepository, userRepo *repositories.UserRepository, notifRepo *repositories.NotificationRepository, auditLog *audit.Logger, checker *authz.Checker) *RequestHandler {
	return &RequestHandler{
		requestRepo: requestRepo,
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		auditLog:    auditLog,
		checker:     checker,
	}
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, authz.ActionList, authz.IsOrganizationAdminOrPostOnly); err != nil {
		errors.Write(w, err)
		return
	}

	requests, err := h.requestRepo.List(r.Context(), org.ID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

type CreateMembershipRequest struct {
	UserID string `json:"user_uuid" validate:"required"`
}

// Create files a membership request. The subject comes from the body, so the
// permission check waits until the body is decoded.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)

	var req CreateMembershipRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	scope := authz.Scope{OrganizationID: org.ID, UserID: req.UserID}
	if err := h.checker.Authorize(r.Context(), requester.ID, scope, authz.ActionCreate, authz.IsOrganizationAdminOrPostOnly); err != nil {
		errors.Write(w, err)
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), req.UserID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if user == nil {
		errors.Write(w, errors.NotFound("User"))
		return
	}

	membership, err := h.orgRepo.GetMembership(r.Context(), org.ID, user.ID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if membership != nil {
		errors.Write(w, errors.Integrity(errors.ErrCodeAlreadyMember, "User is already a member of this organization"))
		return
	}

	mr := &models.MembershipRequest{OrganizationID: org.ID, UserID: user.ID}
	if err := h.requestRepo.Create(r.Context(), mr); err != nil {
		if err == repositories.ErrDuplicate {
			errors.Write(w, errors.Integrity(errors.ErrCodeDuplicateRequest, "A membership request for this user is already pending"))
			return
		}
		errors.Write(w, errors.Internal(err))
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": mr.ID})
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, authz.ActionRead, authz.IsOrganizationAdminOrDeleteOnly); err != nil {
		errors.Write(w, err)
		return
	}

	mr, err := h.requestRepo.GetByID(r.Context(), org.ID, param(r, "request_id"))
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if mr == nil {
		errors.Write(w, errors.NotFound("Membership request"))
		return
	}

	writeJSON(w, http.StatusOK, mr)
}

// Accept adds the requesting user to the organization and removes the request atomically.
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, authz.ActionUpdate, authz.IsOrganizationAdminOrDeleteOnly); err != nil {
		errors.Write(w, err)
		return
	}

	mr, err := h.requestRepo.Accept(r.Context(), org.ID, param(r, "request_id"))
	if err != nil {
		errors.Write(w, storeError(err, "Membership request"))
		return
	}

	notify(r.Context(), h.notifRepo, mr.UserID, models.NotificationRequestAccepted,
		map[string]string{"organization_uuid": org.ID, "organization_name": org.Name})
	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionRequestAccepted, "membership_request", mr.ID,
		map[string]interface{}{"user_uuid": mr.UserID}))

	writeSuccess(w, http.StatusOK, nil)
}

// Delete rejects a request (admins) or withdraws it (the requesting user). The row is
// loaded first because its user is the permission subject.
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)

	mr, err := h.requestRepo.GetByID(r.Context(), org.ID, param(r, "request_id"))
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if mr == nil {
		errors.Write(w, errors.NotFound("Membership request"))
		return
	}

	scope := authz.Scope{OrganizationID: org.ID, UserID: mr.UserID}
	if err := h.checker.Authorize(r.Context(), requester.ID, scope, authz.ActionDelete, authz.IsOrganizationAdminOrDeleteOnly); err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.requestRepo.Delete(r.Context(), org.ID, mr.ID); err != nil {
		errors.Write(w, storeError(err, "Membership request"))
		return
	}

	if mr.UserID != requester.ID {
		notify(r.Context(), h.notifRepo, mr.UserID, models.NotificationRequestRejected,
			map[string]string{"organization_uuid": org.ID, "organization_name": org.Name})
		h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionRequestRejected, "membership_request", mr.ID,
			map[string]interface{}{"user_uuid": mr.UserID}))
	}

	writeSuccess(w, http.StatusOK, nil)
}
