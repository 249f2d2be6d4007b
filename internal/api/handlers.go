package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"inkwell/internal/ai"
	"inkwell/internal/errs"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/services/events"
	"inkwell/internal/session"

	"github.com/gorilla/mux"
)

// Handler handles HTTP requests.
type Handler struct {
	auth       AuthService
	sessions   SessionStore
	users      UserDirectory
	docs       DocumentService
	versions   VersionService
	collabs    CollaborationService
	aiTasks    AITaskService
	usage      UsageService
	search     SearchService
	hub        *events.Hub
	sessionTTL time.Duration
}

func NewHandler(
	auth AuthService,
	sessions SessionStore,
	users UserDirectory,
	docs DocumentService,
	versions VersionService,
	collabs CollaborationService,
	aiTasks AITaskService,
	usage UsageService,
	search SearchService,
	hub *events.Hub,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		auth:       auth,
		sessions:   sessions,
		users:      users,
		docs:       docs,
		versions:   versions,
		collabs:    collabs,
		aiTasks:    aiTasks,
		usage:      usage,
		search:     search,
		hub:        hub,
		sessionTTL: sessionTTL,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps domain errors to their HTTP status. Internal details are
// recorded in the span, not leaked to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.AddSpanError(r.Context(), err)
	status := errs.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return userID, ok
}

func queryInt(r *http.Request, key, fallback string) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		value = fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// Auth handlers

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRegister
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLogin
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Revoke(r.Context(), cookie.Value); err != nil {
			respondError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var update models.UserUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// Document handlers

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.DocumentCreate
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := h.docs.Create(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", "50")
	offset := queryInt(r, "offset", "0")

	documents, err := h.docs.List(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"documents": documents,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	doc, err := h.docs.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var update models.DocumentUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	doc, err := h.docs.Update(r.Context(), userID, mux.Vars(r)["id"], &update)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.docs.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Version handlers

func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.VersionCreate
	if !decodeBody(w, r, &req) {
		return
	}

	version, err := h.versions.Create(r.Context(), userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, version)
}

func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	versions, err := h.versions.List(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (h *Handler) GetVersionContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["number"])
	if err != nil || number < 1 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid version number"})
		return
	}

	version, content, err := h.versions.GetContent(r.Context(), userID, vars["id"], number)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"content": string(content),
	})
}

func (h *Handler) GetLatestContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	version, content, err := h.versions.LatestContent(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"content": string(content),
	})
}

// Collaboration handlers

func (h *Handler) ShareDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ShareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	collab, err := h.collabs.Share(r.Context(), userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, collab)
}

func (h *Handler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	collaborators, err := h.collabs.List(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"collaborators": collaborators})
}

func (h *Handler) RevokeCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.collabs.Revoke(r.Context(), userID, vars["id"], vars["userID"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AI handlers

func (h *Handler) InvokeAI(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Task       string `json:"task"`
		Content    string `json:"content"`
		DocumentID string `json:"document_id,omitempty"`
		ai.Options
	}
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := ai.ParseTask(req.Task)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.aiTasks.Invoke(r.Context(), userID, services.InvokeRequest{
		Task:       task,
		Content:    req.Content,
		DocumentID: req.DocumentID,
		Options:    req.Options,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Usage handlers

func (h *Handler) UsageSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.usage.Summarize(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) RecentUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	records, err := h.usage.Recent(r.Context(), userID, queryInt(r, "limit", "20"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

// Search handler

func (h *Handler) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	results, err := h.search.Search(r.Context(), userID, req.Query, req.Limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

// Health

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.sessions.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]string{"status": status})
}
