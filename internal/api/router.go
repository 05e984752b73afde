package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	apiContext "greekgeeks/internal/api/context"
	"greekgeeks/internal/api/handlers"
	"greekgeeks/internal/api/middleware"
	"greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/auth"
	"greekgeeks/internal/platform/config"
)

type Dependencies struct {
	AuthHandler            *handlers.AuthHandler
	UserHandler            *handlers.UserHandler
	NotificationHandler    *handlers.NotificationHandler
	OrganizationHandler    *handlers.OrganizationHandler
	MemberHandler          *handlers.MemberHandler
	ContactHandler         *handlers.ContactHandler
	RankHandler            *handlers.RankHandler
	RequestHandler         *handlers.RequestHandler
	AuditHandler           *handlers.AuditHandler
	HealthHandler          *handlers.HealthHandler
	AuthMiddleware         *middleware.AuthMiddleware
	OrganizationMiddleware *middleware.OrganizationMiddleware
	RateLimiter            *middleware.RateLimiter
	CORS                   config.CORSConfig
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Resource not found", nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, errors.ErrCodeInvalidInput, "Method not allowed", nil)
	})

	authMid := deps.AuthMiddleware.Handle
	orgMid := deps.OrganizationMiddleware.Handle
	limit := deps.RateLimiter.Handle

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	// Authentication
	router.POST("/auth/token/", chain(deps.AuthHandler.Login, limit))
	router.POST("/auth/refresh/", chain(deps.AuthHandler.Refresh, limit))

	// Users. httprouter cannot register /users/email/ next to /users/:user_id/ for the
	// same method, so the POST route dispatches on the parameter instead.
	users := deps.UserHandler
	router.POST("/users/", chain(users.Create, limit))
	router.POST("/users/:user_id/", userPost(
		chain(users.VerifyEmail, limit),
		chain(authed(users.Update), authMid),
	))
	router.GET("/users/:user_id/", chain(authed(users.Get), authMid))
	router.DELETE("/users/:user_id/", chain(authed(users.Delete), authMid))

	notifications := deps.NotificationHandler
	router.GET("/users/:user_id/notifications/", chain(authed(notifications.List), authMid))
	router.GET("/users/:user_id/notifications/:notification_id/", chain(authed(notifications.Get), authMid))
	router.DELETE("/users/:user_id/notifications/:notification_id/", chain(authed(notifications.Delete), authMid))

	// Organizations
	router.POST("/organizations/", chain(authed(deps.OrganizationHandler.Create), authMid))
	router.GET("/organizations/:org_id/", chain(authed(deps.OrganizationHandler.Get), authMid, orgMid))

	// Members
	members := deps.MemberHandler
	router.GET("/organizations/:org_id/members/", chain(authed(members.List), authMid, orgMid))
	router.GET("/organizations/:org_id/members/:member_id/", chain(authed(members.Get), authMid, orgMid))
	router.POST("/organizations/:org_id/members/:member_id/", chain(authed(members.UpdateRole), authMid, orgMid))
	router.DELETE("/organizations/:org_id/members/:member_id/", chain(authed(members.Delete), authMid, orgMid))

	// Contacts
	contacts := deps.ContactHandler
	router.GET("/organizations/:org_id/contacts/", chain(authed(contacts.List), authMid, orgMid))
	router.POST("/organizations/:org_id/contacts/", chain(authed(contacts.Create), authMid, orgMid))
	router.GET("/organizations/:org_id/contacts/:contact_id/", chain(authed(contacts.Get), authMid, orgMid))
	router.POST("/organizations/:org_id/contacts/:contact_id/", chain(authed(contacts.Update), authMid, orgMid))
	router.DELETE("/organizations/:org_id/contacts/:contact_id/", chain(authed(contacts.Delete), authMid, orgMid))
	router.POST("/organizations/:org_id/contacts/:contact_id/notes/", chain(authed(contacts.CreateNote), authMid, orgMid))
	router.DELETE("/organizations/:org_id/contacts/:contact_id/notes/:note_id/", chain(authed(contacts.DeleteNote), authMid, orgMid))
	router.POST("/organizations/:org_id/contacts/:contact_id/methods/", chain(authed(contacts.CreateMethod), authMid, orgMid))
	router.DELETE("/organizations/:org_id/contacts/:contact_id/methods/:method_id/", chain(authed(contacts.DeleteMethod), authMid, orgMid))

	// Ranks
	ranks := deps.RankHandler
	router.GET("/organizations/:org_id/ranks/", chain(authed(ranks.List), authMid, orgMid))
	router.POST("/organizations/:org_id/ranks/", chain(authed(ranks.Create), authMid, orgMid))
	router.GET("/organizations/:org_id/ranks/:rank_id/", chain(authed(ranks.Get), authMid, orgMid))
	router.POST("/organizations/:org_id/ranks/:rank_id/", chain(authed(ranks.Update), authMid, orgMid))
	router.DELETE("/organizations/:org_id/ranks/:rank_id/", chain(authed(ranks.Delete), authMid, orgMid))

	// Membership requests
	requests := deps.RequestHandler
	router.GET("/organizations/:org_id/requests/", chain(authed(requests.List), authMid, orgMid))
	router.POST("/organizations/:org_id/requests/", chain(authed(requests.Create), authMid, orgMid))
	router.GET("/organizations/:org_id/requests/:request_id/", chain(authed(requests.Get), authMid, orgMid))
	router.POST("/organizations/:org_id/requests/:request_id/", chain(authed(requests.Accept), authMid, orgMid))
	router.DELETE("/organizations/:org_id/requests/:request_id/", chain(authed(requests.Delete), authMid, orgMid))

	// Audit
	router.GET("/organizations/:org_id/audit/", chain(authed(deps.AuditHandler.List), authMid, orgMid))

	c := cors.New(cors.Options{
		AllowedOrigins: deps.CORS.AllowedOrigins,
		AllowedMethods: deps.CORS.AllowedMethods,
		AllowedHeaders: deps.CORS.AllowedHeaders,
		MaxAge:         deps.CORS.MaxAge,
	})

	return middleware.RequestLogger(c.Handler(router))
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

// authed passes the requester authenticated by AuthMiddleware to h.
func authed(h handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			errors.Write(w, errors.Unauthenticated("No authentication claims found"))
			return
		}
		h(w, r, handlers.Requester{ID: claims.UserID, Email: claims.Email})
	}
}

func userPost(verify, update httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("user_id") == "email" {
			verify(w, r, ps)
			return
		}
		update(w, r, ps)
	}
}
