package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

type MemberHandler struct {
	orgRepo   *repositories.OrganizationRepository
	notifRepo *repositories.NotificationRepository
	auditLog  *audit.Logger
	checker   *authz.Checker
}

func NewMemberHandler(orgRepo *repositories.OrganizationRepository, notifRepo *repositories.NotificationRepository, auditLog *audit.Logger, checker *authz.Checker) *MemberHandler {
	return &MemberHandler{
		orgRepo:   orgRepo,
		notifRepo: notifRepo,
		auditLog:  auditLog,
		checker:   checker,
	}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, authz.ActionList, authz.IsOrganizationMember); err != nil {
		errors.Write(w, err)
		return
	}

	members, err := h.orgRepo.ListMembers(r.Context(), org.ID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	memberID := param(r, "member_id")
	scope := authz.Scope{OrganizationID: org.ID, UserID: memberID}
	if err := h.checker.Authorize(r.Context(), requester.ID, scope, authz.ActionRead, authz.IsOrganizationAdminOrReadOnly); err != nil {
		errors.Write(w, err)
		return
	}

	member, err := h.orgRepo.GetMember(r.Context(), org.ID, memberID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if member == nil {
		errors.Write(w, errors.NotFound("Member"))
		return
	}

	writeJSON(w, http.StatusOK, member)
}

type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// UpdateRole promotes or demotes a member.
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	memberID := param(r, "member_id")
	scope := authz.Scope{OrganizationID: org.ID, UserID: memberID}
	if err := h.checker.Authorize(r.Context(), requester.ID, scope, authz.ActionUpdate, authz.IsOrganizationAdmin); err != nil {
		errors.Write(w, err)
		return
	}

	var req UpdateMemberRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.orgRepo.UpdateMemberRole(r.Context(), org.ID, memberID, req.Role); err != nil {
		errors.Write(w, memberError(err))
		return
	}

	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionMemberRoleChanged, "member", memberID,
		map[string]interface{}{"role": req.Role}))

	writeSuccess(w, http.StatusOK, nil)
}

// Delete removes a user from the organization. The user account itself is kept.
// Admins may remove anyone; members may only remove themselves.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	memberID := param(r, "member_id")
	scope := authz.Scope{OrganizationID: org.ID, UserID: memberID}
	if err := h.checker.Authorize(r.Context(), requester.ID, scope, authz.ActionDelete, authz.IsOrganizationAdminOrDeleteOnly); err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.orgRepo.RemoveMember(r.Context(), org.ID, memberID); err != nil {
		errors.Write(w, memberError(err))
		return
	}

	if memberID != requester.ID {
		notify(r.Context(), h.notifRepo, memberID, models.NotificationMembershipRemoved,
			map[string]string{"organization_uuid": org.ID, "organization_name": org.Name})
	}
	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionMemberRemoved, "member", memberID, nil))

	writeSuccess(w, http.StatusOK, nil)
}

func memberError(err error) error {
	if err == repositories.ErrLastAdmin {
		return errors.Integrity(errors.ErrCodeLastAdmin, "An organization must keep at least one admin")
	}
	return storeError(err, "Member")
}
