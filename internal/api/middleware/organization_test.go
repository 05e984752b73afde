package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/julienschmidt/httprouter"
	apiContext "greekgeeks/internal/api/context"
	"greekgeeks/internal/platform/repositories"
)

func withOrgParam(req *http.Request, orgID string) *http.Request {
	ps := httprouter.Params{{Key: "org_id", Value: orgID}}
	return req.WithContext(context.WithValue(req.Context(), apiContext.Params, ps))
}

func TestOrganizationMiddleware(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	middleware := NewOrganizationMiddleware(repositories.NewOrganizationRepository(db))

	t.Run("Known organization", func(t *testing.T) {
		req := withOrgParam(httptest.NewRequest("GET", "/", nil), "org_123")

		rows := sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("org_123", "Alpha Beta", 1234567890, 1234567890)
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_123").
			WillReturnRows(rows)

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			org := OrganizationFrom(r.Context())
			if org == nil || org.ID != "org_123" {
				t.Errorf("Expected organization org_123, got %+v", org)
			}
			w.WriteHeader(http.StatusOK)
		})

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
	})

	t.Run("Unknown organization", func(t *testing.T) {
		req := withOrgParam(httptest.NewRequest("GET", "/", nil), "org_999")

		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_999").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
		}
	})

	t.Run("Database failure", func(t *testing.T) {
		req := withOrgParam(httptest.NewRequest("GET", "/", nil), "org_123")

		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_123").
			WillReturnError(sqlmock.ErrCancelled)

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusInternalServerError)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
