package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
	"github.com/stdiopt/gowasm-fontpick/fontpick/follow"
	"github.com/stdiopt/gowasm-fontpick/fontpick/poster"
)

type catalogEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Tags    []string `json:"tags"`
	Family  string   `json:"family"`
	Command string   `json:"command"`
	Preview string   `json:"preview"`
}

// NewHandler wires the static client, the preview cards, the catalog
// listing and the follow hub.
func NewHandler(cfg *Config, log *slog.Logger) (http.Handler, error) {
	posters, err := poster.New(cfg.Poster.Width, cfg.Poster.Height)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/follow", follow.NewHub(log))
	mux.HandleFunc("GET /preview/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := r.PathValue("file")
		id, ok := strings.CutSuffix(file, ".png")
		font, known := catalog.ByID(id)
		if !ok || !known {
			http.NotFound(w, r)
			return
		}
		buf, err := posters.PNG(font)
		if err != nil {
			log.Error("poster render failed", "font", id, "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(buf)
	})
	mux.HandleFunc("GET /catalog.json", func(w http.ResponseWriter, r *http.Request) {
		entries := make([]catalogEntry, 0, len(catalog.Fonts))
		for _, f := range catalog.Fonts {
			entries = append(entries, catalogEntry{
				ID:      f.ID,
				Name:    f.Name,
				URL:     f.URL,
				Tags:    f.Tags,
				Family:  f.Family(),
				Command: f.InstallCommand(),
				Preview: "/preview/" + f.ID + ".png",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Warn("catalog write failed", "err", err)
		}
	})
	mux.Handle("/", http.FileServer(http.Dir(cfg.Dir)))

	return logger(log, mux), nil
}

func logger(log *slog.Logger, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	}
}
