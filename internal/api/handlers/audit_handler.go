package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/authz"
)

const auditListLimit = 100

type AuditHandler struct {
	auditLog *audit.Logger
	checker  *authz.Checker
}

func NewAuditHandler(auditLog *audit.Logger, checker *authz.Checker) *AuditHandler {
	return &AuditHandler{auditLog: auditLog, checker: checker}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, authz.ActionList, authz.IsOrganizationAdmin); err != nil {
		errors.Write(w, err)
		return
	}

	logs, err := h.auditLog.List(r.Context(), org.ID, auditListLimit)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
