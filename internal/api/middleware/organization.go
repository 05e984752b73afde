package middleware

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "greekgeeks/internal/api/context"
	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

// OrganizationMiddleware resolves the :org_id route parameter to an organization
// and stores it in the request context.
type OrganizationMiddleware struct {
	orgRepo *repositories.OrganizationRepository
}

func NewOrganizationMiddleware(orgRepo *repositories.OrganizationRepository) *OrganizationMiddleware {
	return &OrganizationMiddleware{orgRepo: orgRepo}
}

func (m *OrganizationMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
		orgID := params.ByName("org_id")
		if orgID == "" {
			errors.Write(w, errors.NotFound("Organization"))
			return
		}

		org, err := m.orgRepo.GetByID(r.Context(), orgID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
			return
		}
		if org == nil {
			errors.Write(w, errors.NotFound("Organization"))
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Organization, org)
		next(w, r.WithContext(ctx))
	}
}

// OrganizationFrom returns the organization stored by OrganizationMiddleware.
func OrganizationFrom(ctx context.Context) *models.Organization {
	org, _ := ctx.Value(apiContext.Organization).(*models.Organization)
	return org
}
