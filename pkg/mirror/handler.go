package mirror

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/thepwagner/aoscpkgs/pkg/repo"
)

// Handler serves a directory laid out like a repository mirror.
type Handler struct {
	mux *chi.Mux

	root string
}

func NewHandler(root string) *Handler {
	h := &Handler{
		mux:  chi.NewRouter(),
		root: root,
	}
	h.mux.Use(middleware.RequestID)
	h.mux.Use(middleware.RealIP)
	h.mux.Use(Logger)

	h.mux.Get("/dists/{dist}/{component}/binary-{architecture}/Packages", h.Packages)
	h.mux.Get("/dists/{dist}/{component}/binary-{architecture}/Packages{compression:\\.[gx]z}", h.Packages)
	return h
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h Handler) Packages(w http.ResponseWriter, r *http.Request) {
	dist := repo.Distribution(chi.URLParam(r, "dist"))
	component := repo.Component(chi.URLParam(r, "component"))
	arch := repo.Architecture(chi.URLParam(r, "architecture"))
	compression := repo.ParseCompression(chi.URLParam(r, "compression"))
	slog.Debug("handling Packages",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("dist", dist),
		slog.Any("component", component),
		slog.Any("arch", arch),
		slog.Any("compression", compression),
	)

	for _, segment := range []string{dist.String(), component.String(), arch.String()} {
		if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
			http.NotFound(w, r)
			return
		}
	}

	f, encode, err := h.open(dist, component, arch, compression)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		slog.Error("opening index", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	out, err := encode.NewWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(out, f); err != nil {
		slog.Warn("serving index", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		return
	}
	if err := out.Close(); err != nil {
		slog.Warn("serving index", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
}

// open finds the requested index on disk. When only the plain index exists,
// it is returned with the compression the response must be encoded with.
func (h Handler) open(dist repo.Distribution, component repo.Component, arch repo.Architecture, compression repo.Compression) (*os.File, repo.Compression, error) {
	path := func(c repo.Compression) string {
		return filepath.Join(append([]string{h.root}, repo.PackagesPath(dist, component, arch, c)...)...)
	}

	f, err := os.Open(path(compression))
	if err == nil || compression == repo.CompressionNone || !errors.Is(err, fs.ErrNotExist) {
		return f, repo.CompressionNone, err
	}
	f, err = os.Open(path(repo.CompressionNone))
	return f, compression, err
}
