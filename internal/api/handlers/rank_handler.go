package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

type RankHandler struct {
	rankRepo *repositories.RankRepository
	auditLog *audit.Logger
	checker  *authz.Checker
}

func NewRankHandler(rankRepo *repositories.RankRepository, auditLog *audit.Logger, checker *authz.Checker) *RankHandler {
	return &RankHandler{rankRepo: rankRepo, auditLog: auditLog, checker: checker}
}

func (h *RankHandler) authorize(r *http.Request, requester Requester, action authz.Action, pred authz.Predicate) (*models.Organization, error) {
	org := organization(r)
	err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, action, pred)
	return org, err
}

func duplicateRank() error {
	return errors.Integrity(errors.ErrCodeDuplicateRank, "A rank with this name already exists in the organization")
}

func (h *RankHandler) List(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionList, authz.IsOrganizationAdminOrReadOnly)
	if err != nil {
		errors.Write(w, err)
		return
	}

	ranks, err := h.rankRepo.List(r.Context(), org.ID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, ranks)
}

type CreateRankRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *RankHandler) Create(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionCreate, authz.IsOrganizationAdminOrReadOnly)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req CreateRankRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	rank := &models.ContactRank{OrganizationID: org.ID, Name: req.Name, Description: req.Description}
	if err := h.rankRepo.Create(r.Context(), rank); err != nil {
		if err == repositories.ErrDuplicate {
			errors.Write(w, duplicateRank())
			return
		}
		errors.Write(w, errors.Internal(err))
		return
	}

	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionRankCreated, "rank", rank.ID,
		map[string]interface{}{"name": rank.Name}))

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": rank.ID})
}

func (h *RankHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionRead, authz.IsOrganizationAdminOrReadOnly)
	if err != nil {
		errors.Write(w, err)
		return
	}

	rank, err := h.rankRepo.GetByID(r.Context(), org.ID, param(r, "rank_id"))
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if rank == nil {
		errors.Write(w, errors.NotFound("Rank"))
		return
	}

	writeJSON(w, http.StatusOK, rank)
}

type UpdateRankRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func (h *RankHandler) Update(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionUpdate, authz.IsOrganizationAdmin)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req UpdateRankRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	rank, err := h.rankRepo.GetByID(r.Context(), org.ID, param(r, "rank_id"))
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if rank == nil {
		errors.Write(w, errors.NotFound("Rank"))
		return
	}

	if req.Name != nil {
		rank.Name = *req.Name
	}
	if req.Description != nil {
		rank.Description = *req.Description
	}

	if err := h.rankRepo.Update(r.Context(), rank); err != nil {
		if err == repositories.ErrDuplicate {
			errors.Write(w, duplicateRank())
			return
		}
		errors.Write(w, storeError(err, "Rank"))
		return
	}

	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionRankUpdated, "rank", rank.ID, nil))

	writeSuccess(w, http.StatusOK, nil)
}

// Delete removes a rank. Contacts holding it are left without a rank.
func (h *RankHandler) Delete(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionDelete, authz.IsOrganizationAdmin)
	if err != nil {
		errors.Write(w, err)
		return
	}

	rankID := param(r, "rank_id")
	if err := h.rankRepo.Delete(r.Context(), org.ID, rankID); err != nil {
		errors.Write(w, storeError(err, "Rank"))
		return
	}

	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionRankDeleted, "rank", rankID, nil))

	writeSuccess(w, http.StatusOK, nil)
}
