package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/service"
)

// ThreadHandler exposes the comment/reply CRUD endpoints.
//
// Route map (wired in internal/server):
//
//	GET    /api/comments                          list, public
//	POST   /api/comments                          create, auth required
//	PATCH  /api/comments/{id}                     owner only
//	DELETE /api/comments/{id}                     owner only
//	GET    /api/comments/{id}/replies             public
//	POST   /api/comments/{id}/replies             auth required
//	PATCH  /api/comments/{id}/replies/{replyId}   owner only
//	DELETE /api/comments/{id}/replies/{replyId}   owner only
type ThreadHandler struct {
	threads *service.ThreadService
	logger  *slog.Logger
}

// NewThreadHandler creates a ThreadHandler.
func NewThreadHandler(threads *service.ThreadService, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{threads: threads, logger: logger}
}

type contentRequest struct {
	Content string `json:"content"`
}

// HandleListComments returns all comments, newest first, replies inline.
func (h *ThreadHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.threads.ListComments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCreateComment creates a comment owned by the session identity.
func (h *ThreadHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("You must be signed in to comment"))
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.threads.CreateComment(r.Context(), claims.Subject, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleUpdateComment replaces a comment body (owner only).
func (h *ThreadHandler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("You must be signed in to update a comment"))
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.threads.UpdateComment(r.Context(), claims.Subject, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// HandleDeleteComment deletes a comment (owner only).
func (h *ThreadHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("You must be signed in to delete a comment"))
		return
	}

	if err := h.threads.DeleteComment(r.Context(), claims.Subject, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

// HandleListReplies returns the replies of one comment.
func (h *ThreadHandler) HandleListReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.threads.ListReplies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

// HandleCreateReply creates a reply under an existing comment.
func (h *ThreadHandler) HandleCreateReply(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("You must be signed in to reply"))
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.threads.CreateReply(r.Context(), claims.Subject, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reply)
}

// HandleUpdateReply replaces a reply body (owner only).
func (h *ThreadHandler) HandleUpdateReply(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("You must be signed in to update a reply"))
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.threads.UpdateReply(r.Context(), claims.Subject,
		chi.URLParam(r, "id"), chi.URLParam(r, "replyId"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// HandleDeleteReply deletes a reply (owner only) and removes it from the
// parent's reply list.
func (h *ThreadHandler) HandleDeleteReply(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("You must be signed in to delete a reply"))
		return
	}

	if err := h.threads.DeleteReply(r.Context(), claims.Subject,
		chi.URLParam(r, "id"), chi.URLParam(r, "replyId")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Reply deleted successfully"})
}
