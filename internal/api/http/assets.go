package http

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-selfcheck/internal/auth/middleware"
	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
)

// MountAssets serves band illustrations by key to anyone; editors may upload new ones.
func MountAssets(r chi.Router, d Deps) {
	// PUT /assets/*  multipart field "file"
	r.With(authmw.JWTMiddleware(d.Auth), rbac.Require("assessment:edit")).Put("/*", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			badRequest(w, "file required")
			return
		}
		defer f.Close()
		key, err := d.Blobs.Put(chi.URLParam(r, "*"), f)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"key": key})
	})

	// GET /assets/*
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		rc, err := d.Blobs.Get(key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "asset not found"})
				return
			}
			writeError(w, d.Log, err)
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
