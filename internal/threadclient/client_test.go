package threadclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/model"
)

func TestClient_BearerHeaderAndPaths(t *testing.T) {
	var gotAuth, gotPath, gotMethod string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewEncoder(w).Encode(model.Comment{ID: "c1", Content: "hi"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")

	_, err := c.UpdateComment(context.Background(), "c1", "hi")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/comments/c1", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
}

func TestClient_LoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"user":  model.User{ID: "u1", Email: "a@example.com", Username: "alice"},
			"token": "session-token",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.Login(context.Background(), "a@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "session-token", c.Token())
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "forbidden",
			"message": "you are not authorized to delete this comment",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.DeleteComment(context.Background(), "c1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "forbidden", apiErr.Type)
	assert.Contains(t, apiErr.Message, "not authorized")
}

func TestController_RefreshAndMutations(t *testing.T) {
	comments := []model.Comment{
		{ID: "c1", Content: "server comment", Replies: []model.Reply{}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/comments":
			json.NewEncoder(w).Encode(comments)
		case r.Method == http.MethodPost && r.URL.Path == "/api/comments":
			var body struct {
				Content string `json:"content"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(model.Comment{ID: "c2", Content: body.Content, Replies: []model.Reply{}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/comments/c1":
			json.NewEncoder(w).Encode(map[string]string{"message": "Comment deleted successfully"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctl := NewController(New(srv.URL))

	require.NoError(t, ctl.Refresh(context.Background()))
	require.Len(t, ctl.State().Comments, 1)

	require.NoError(t, ctl.PostComment(context.Background(), "fresh"))
	state := ctl.State()
	require.Len(t, state.Comments, 2)
	assert.Equal(t, "fresh", state.Comments[0].Content, "created comment prepended")

	// Unconfirmed delete never reaches the server and changes nothing.
	err := ctl.DeleteComment(context.Background(), "c1", false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Len(t, ctl.State().Comments, 2)

	require.NoError(t, ctl.DeleteComment(context.Background(), "c1", true))
	state = ctl.State()
	require.Len(t, state.Comments, 1)
	assert.Equal(t, "c2", state.Comments[0].ID)
}

func TestController_FailedRefreshKeepsState(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "internal_error", "message": "An internal error occurred"})
			return
		}
		json.NewEncoder(w).Encode([]model.Comment{{ID: "c1", Content: "cached", Replies: []model.Reply{}}})
	}))
	defer srv.Close()

	ctl := NewController(New(srv.URL))
	require.NoError(t, ctl.Refresh(context.Background()))

	healthy = false
	err := ctl.Refresh(context.Background())
	require.Error(t, err)

	state := ctl.State()
	assert.NotEmpty(t, state.LoadErr)
	require.Len(t, state.Comments, 1, "previous list kept after failed refresh")
	assert.Equal(t, "cached", state.Comments[0].Content)
}
