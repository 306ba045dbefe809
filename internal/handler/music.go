package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Track describes one entry of the music playlist.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	File   string `json:"file"`
}

// MusicHandler serves the playlist for the site's audio player. The
// playlist is whatever .mp3 files sit in the music directory; dropping a
// file in is all it takes to publish a track.
type MusicHandler struct {
	musicDir string
	logger   *slog.Logger
}

// NewMusicHandler creates a MusicHandler reading from musicDir.
func NewMusicHandler(musicDir string, logger *slog.Logger) *MusicHandler {
	return &MusicHandler{musicDir: musicDir, logger: logger}
}

// HandleList returns the playlist as JSON.
//
// HTTP: GET /api/music
//
// The directory is re-read on every request — the playlist is small and
// this keeps it editable without a restart. A missing directory is an
// empty playlist, not an error.
func (h *MusicHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.musicDir)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Warn("failed to read music directory",
				slog.String("dir", h.musicDir),
				slog.String("error", err.Error()),
			)
		}
		writeJSON(w, http.StatusOK, []Track{})
		return
	}

	tracks := make([]Track, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".mp3") {
			continue
		}
		tracks = append(tracks, Track{
			Title:  strings.TrimSuffix(name, filepath.Ext(name)),
			Artist: "Unknown Artist",
			File:   "/music/" + name,
		})
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Title < tracks[j].Title })

	writeJSON(w, http.StatusOK, tracks)
}
