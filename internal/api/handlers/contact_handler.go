package handlers

import (
	"net/http"

	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/models"
	"greekgeeks/internal/platform/repositories"
)

// ContactHandler serves contacts and their notes and contact methods. Every
// endpoint is open to any member of the organization.
type ContactHandler struct {
	contactRepo *repositories.ContactRepository
	rankRepo    *repositories.RankRepository
	auditLog    *audit.Logger
	checker     *authz.Checker
}

func NewContactHandler(contactRepo *repositories.ContactRepository, rankRepo *repositories.RankRepository, auditLog *audit.Logger, checker *authz.Checker) *ContactHandler {
	return &ContactHandler{
		contactRepo: contactRepo,
		rankRepo:    rankRepo,
		auditLog:    auditLog,
		checker:     checker,
	}
}

func (h *ContactHandler) authorize(r *http.Request, requester Requester, action authz.Action) (*models.Organization, error) {
	org := organization(r)
	err := h.checker.Authorize(r.Context(), requester.ID, authz.Scope{OrganizationID: org.ID}, action, authz.IsOrganizationMember)
	return org, err
}

// loadContact resolves :contact_id inside org.
func (h *ContactHandler) loadContact(r *http.Request, org *models.Organization) (*models.Contact, error) {
	contact, err := h.contactRepo.GetByID(r.Context(), org.ID, param(r, "contact_id"))
	if err != nil {
		return nil, errors.Internal(err)
	}
	if contact == nil {
		return nil, errors.NotFound("Contact")
	}
	return contact, nil
}

// checkRank rejects ranks that do not belong to org.
func (h *ContactHandler) checkRank(r *http.Request, org *models.Organization, rankID string) error {
	rank, err := h.rankRepo.GetByID(r.Context(), org.ID, rankID)
	if err != nil {
		return errors.Internal(err)
	}
	if rank == nil {
		return errors.Validation("rank_uuid does not name a rank of this organization", map[string]string{"rank_uuid": "unknown rank"})
	}
	return nil
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionList)
	if err != nil {
		errors.Write(w, err)
		return
	}

	contacts, err := h.contactRepo.List(r.Context(), org.ID)
	if err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

type ContactMethodInput struct {
	Medium string `json:"medium" validate:"required,max=32"`
	Value  string `json:"value" validate:"required,max=255"`
}

type CreateContactRequest struct {
	FirstName            string              `json:"first_name" validate:"required,max=150"`
	LastName             string              `json:"last_name" validate:"max=150"`
	RankID               *string             `json:"rank_uuid"`
	PrimaryContactMethod *ContactMethodInput `json:"primary_contact_method" validate:"omitempty"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionCreate)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req CreateContactRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	if req.RankID != nil {
		if err := h.checkRank(r, org, *req.RankID); err != nil {
			errors.Write(w, err)
			return
		}
	}

	createdBy := requester.ID
	contact := &models.Contact{
		OrganizationID: org.ID,
		CreatedBy:      &createdBy,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		RankID:         req.RankID,
	}

	var primary *models.ContactMethod
	if req.PrimaryContactMethod != nil {
		primary = &models.ContactMethod{
			Medium: req.PrimaryContactMethod.Medium,
			Value:  req.PrimaryContactMethod.Value,
		}
	}

	if err := h.contactRepo.Create(r.Context(), contact, primary); err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": contact.ID})
}

// Get returns the contact with its contact methods and notes.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionRead)
	if err != nil {
		errors.Write(w, err)
		return
	}

	contact, err := h.loadContact(r, org)
	if err != nil {
		errors.Write(w, err)
		return
	}

	if contact.ContactMethods, err = h.contactRepo.ListMethods(r.Context(), contact.ID); err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}
	if contact.Notes, err = h.contactRepo.ListNotes(r.Context(), contact.ID); err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// UpdateContactRequest lists the editable fields. An empty rank_uuid clears the rank.
type UpdateContactRequest struct {
	FirstName              *string `json:"first_name" validate:"omitempty,min=1,max=150"`
	LastName               *string `json:"last_name" validate:"omitempty,max=150"`
	RankID                 *string `json:"rank_uuid"`
	PrimaryContactMethodID *string `json:"primary_contact_method_uuid"`
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionUpdate)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req UpdateContactRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	contact, err := h.loadContact(r, org)
	if err != nil {
		errors.Write(w, err)
		return
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.RankID != nil {
		if *req.RankID == "" {
			contact.RankID = nil
		} else {
			if err := h.checkRank(r, org, *req.RankID); err != nil {
				errors.Write(w, err)
				return
			}
			contact.RankID = req.RankID
		}
	}
	if req.PrimaryContactMethodID != nil {
		method, err := h.contactRepo.GetMethod(r.Context(), contact.ID, *req.PrimaryContactMethodID)
		if err != nil {
			errors.Write(w, errors.Internal(err))
			return
		}
		if method == nil {
			errors.Write(w, errors.Validation("primary_contact_method_uuid does not name a contact method of this contact",
				map[string]string{"primary_contact_method_uuid": "unknown contact method"}))
			return
		}
		contact.PrimaryContactMethodID = &method.ID
	}

	if err := h.contactRepo.Update(r.Context(), contact); err != nil {
		errors.Write(w, storeError(err, "Contact"))
		return
	}

	writeSuccess(w, http.StatusCreated, nil)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionDelete)
	if err != nil {
		errors.Write(w, err)
		return
	}

	contactID := param(r, "contact_id")
	if err := h.contactRepo.Delete(r.Context(), org.ID, contactID); err != nil {
		errors.Write(w, storeError(err, "Contact"))
		return
	}

	h.auditLog.Log(r.Context(), auditEntry(r, org.ID, requester.ID, audit.ActionContactDeleted, "contact", contactID, nil))

	writeSuccess(w, http.StatusOK, nil)
}

type CreateNoteRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

func (h *ContactHandler) CreateNote(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionCreate)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req CreateNoteRequest
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	contact, err := h.loadContact(r, org)
	if err != nil {
		errors.Write(w, err)
		return
	}

	createdBy := requester.ID
	note := &models.ContactNote{ContactID: contact.ID, CreatedBy: &createdBy, Body: req.Body}
	if err := h.contactRepo.CreateNote(r.Context(), note); err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": note.ID})
}

func (h *ContactHandler) DeleteNote(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionDelete)
	if err != nil {
		errors.Write(w, err)
		return
	}

	contact, err := h.loadContact(r, org)
	if err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.contactRepo.DeleteNote(r.Context(), contact.ID, param(r, "note_id")); err != nil {
		errors.Write(w, storeError(err, "Note"))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

func (h *ContactHandler) CreateMethod(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionCreate)
	if err != nil {
		errors.Write(w, err)
		return
	}

	var req ContactMethodInput
	if err := decode(r, &req); err != nil {
		errors.Write(w, err)
		return
	}

	contact, err := h.loadContact(r, org)
	if err != nil {
		errors.Write(w, err)
		return
	}

	method := &models.ContactMethod{ContactID: contact.ID, Medium: req.Medium, Value: req.Value}
	if err := h.contactRepo.AddMethod(r.Context(), method); err != nil {
		errors.Write(w, errors.Internal(err))
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"uuid": method.ID})
}

// DeleteMethod removes a contact method. If it was the primary method the contact
// is left without one.
func (h *ContactHandler) DeleteMethod(w http.ResponseWriter, r *http.Request, requester Requester) {
	org, err := h.authorize(r, requester, authz.ActionDelete)
	if err != nil {
		errors.Write(w, err)
		return
	}

	contact, err := h.loadContact(r, org)
	if err != nil {
		errors.Write(w, err)
		return
	}

	if err := h.contactRepo.DeleteMethod(r.Context(), contact.ID, param(r, "method_id")); err != nil {
		errors.Write(w, storeError(err, "Contact method"))
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}
