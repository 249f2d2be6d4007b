package api

import (
	"inkwell/internal/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(h *Handler, sessions middleware.SessionLookup) *mux.Router {
	r := mux.NewRouter()

	// Global middleware: tracing first, then recovery, then CORS
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware)

	// Public endpoints
	public := r.PathPrefix("/api").Subrouter()
	public.HandleFunc("/auth/register", h.Register).Methods("POST")
	public.HandleFunc("/auth/login", h.Login).Methods("POST")
	public.HandleFunc("/health", h.Health).Methods("GET")

	// Session-authenticated endpoints
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(middleware.AuthMiddleware(sessions))

	authed.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	authed.HandleFunc("/auth/me", h.Me).Methods("GET")
	authed.HandleFunc("/auth/profile", h.UpdateProfile).Methods("PUT")
	authed.HandleFunc("/auth/password", h.ChangePassword).Methods("PUT")

	// Document endpoints
	authed.HandleFunc("/documents", h.CreateDocument).Methods("POST")
	authed.HandleFunc("/documents", h.ListDocuments).Methods("GET")
	authed.HandleFunc("/documents/{id}", h.GetDocument).Methods("GET")
	authed.HandleFunc("/documents/{id}", h.UpdateDocument).Methods("PUT")
	authed.HandleFunc("/documents/{id}", h.DeleteDocument).Methods("DELETE")

	// Version history endpoints
	authed.HandleFunc("/documents/{id}/versions", h.CreateVersion).Methods("POST")
	authed.HandleFunc("/documents/{id}/versions", h.ListVersions).Methods("GET")
	authed.HandleFunc("/documents/{id}/versions/{number}/content", h.GetVersionContent).Methods("GET")
	authed.HandleFunc("/documents/{id}/content", h.GetLatestContent).Methods("GET")

	// Collaboration endpoints
	authed.HandleFunc("/documents/{id}/share", h.ShareDocument).Methods("POST")
	authed.HandleFunc("/documents/{id}/collaborators", h.ListCollaborators).Methods("GET")
	authed.HandleFunc("/documents/{id}/collaborators/{userID}", h.RevokeCollaborator).Methods("DELETE")

	// AI endpoints
	authed.HandleFunc("/ai/invoke", h.InvokeAI).Methods("POST")
	authed.HandleFunc("/usage/summary", h.UsageSummary).Methods("GET")
	authed.HandleFunc("/usage/recent", h.RecentUsage).Methods("GET")

	// Search
	authed.HandleFunc("/search", h.SemanticSearch).Methods("POST")

	// WebSocket event feed. Browsers send cookies on upgrade requests, so
	// the same session middleware applies.
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(middleware.AuthMiddleware(sessions))
	ws.HandleFunc("/documents/{id}/events", h.DocumentEvents)

	return r
}
