package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

type OrganizationHandler struct {
	orgRepo *repositories.OrganizationRepository
	checker *authz.Checker
}

func NewOrganizationHandler(orgRepo *repositories.OrganizationRepository, checker *authz.Checker) *OrganizationHandler {
	return &OrganizationHandler{orgRepo: orgRepo, checker: checker}
}

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// Create makes a new organization with the requester as its first admin.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request, requester Requester) {
	var req CreateOrganizationRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	org := &models.Organization{Name: req.Name}
	if err := h.orgRepo.CreateWithAdmin(r.Context(), org, requester.ID); err != nil {
		if err == repositories.ErrMissingReference {
			// The token outlived its account.
			errors.Write(w, errors.Unauthenticated("Account no longer exists"))
			return
		}
		errors.Write(w, errors.Internal(err))
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": org.ID})
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	org := organization(r)
	if err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, authz.ActionRead, authz.IsOrganizationMember); err != nil {
		errors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}
