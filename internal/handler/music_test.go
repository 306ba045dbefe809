package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/handler"
)

func TestMusicHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("lists mp3 files", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"Bohemian Rhapsody.mp3", "Clair de Lune.mp3", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
		}

		h := handler.NewMusicHandler(dir, logger)
		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/music", nil))

		require.Equal(t, http.StatusOK, rr.Code)

		var tracks []handler.Track
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&tracks))
		require.Len(t, tracks, 2, "non-mp3 files excluded")
		assert.Equal(t, "Bohemian Rhapsody", tracks[0].Title)
		assert.Equal(t, "/music/Bohemian Rhapsody.mp3", tracks[0].File)
		assert.Equal(t, "Unknown Artist", tracks[0].Artist)
		assert.Equal(t, "Clair de Lune", tracks[1].Title)
	})

	t.Run("missing directory is an empty playlist", func(t *testing.T) {
		h := handler.NewMusicHandler(filepath.Join(t.TempDir(), "absent"), logger)
		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/music", nil))

		require.Equal(t, http.StatusOK, rr.Code)

		var tracks []handler.Track
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&tracks))
		assert.Empty(t, tracks)
	})
}
