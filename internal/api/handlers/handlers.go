package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	apiContext "greekgeeks/internal/api/context"
	"greekgeeks/internal/api/middleware"
	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/pkg/validator"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

// Requester is the authenticated caller of a request.
type Requester struct {
	ID    string
	Email string
}

// Handler is an endpoint that needs an authenticated requester.
type Handler func(w http.ResponseWriter, r *http.Request, requester Requester)

func param(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}

func organization(r *http.Request) *models.Organization {
	return middleware.OrganizationFrom(r.Context())
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Validation("Invalid request body", nil)
	}
	return validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSuccess writes {"success": true} plus any extra fields.
func writeSuccess(w http.ResponseWriter, status int, fields map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// storeError converts a repository error into an API error for resource.
func storeError(err error, resource string) error {
	switch err {
	case repositories.ErrNotFound:
		return errors.NotFound(resource)
	default:
		return errors.Internal(err)
	}
}

func auditEntry(r *http.Request, orgID, userID, action, resourceType, resourceID string, metadata map[string]interface{}) audit.Entry {
	return audit.Entry{
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Metadata:       metadata,
		IPAddress:      middleware.IPAddressKeyFunc(r),
		UserAgent:      r.UserAgent(),
	}
}

// notify stores a notification for userID. A failure is logged and does not fail the request.
func notify(ctx context.Context, repo *repositories.NotificationRepository, userID, kind string, payload interface{}) {
	if _, err := repo.Create(ctx, userID, kind, payload); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("kind", kind).Msg("failed to store notification")
	}
}
