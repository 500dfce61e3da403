package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Charbel-5/moondev-coding-challenge/internal/app"
	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/middleware"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/response"
	"github.com/Charbel-5/moondev-coding-challenge/internal/storage"
)

type StorageHandler struct {
	artifacts *app.ArtifactService
	limiter   middleware.Limiter
}

func NewStorageHandler(artifacts *app.ArtifactService, limiter middleware.Limiter) *StorageHandler {
	return &StorageHandler{artifacts: artifacts, limiter: limiter}
}

type signedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

// Storage is the broker surface:
// GET ?action=getSignedUrl&bucket=&path= -> {signedUrl}
// GET ?action=download&bucket=&path=    -> bytes, attachment disposition
func (h *StorageHandler) Storage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	query := r.URL.Query()
	action := query.Get("action")
	bucket := strings.TrimSpace(query.Get("bucket"))
	path := strings.TrimSpace(query.Get("path"))
	if bucket == "" || path == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{
			"bucket": "bucket is required",
			"path":   "path is required",
		}))
		return
	}

	switch action {
	case "getSignedUrl":
		signed, err := h.artifacts.SignedURL(r.Context(), actor, bucket, path)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, signedURLResponse{SignedURL: signed})
	case "download":
		download, err := h.artifacts.Stream(r.Context(), actor, bucket, path)
		if err != nil {
			response.Error(w, err)
			return
		}
		defer download.Body.Close()
		w.Header().Set("Content-Type", download.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
		_, _ = io.Copy(w, download.Body)
	default:
		response.Error(w, common.NewValidationError("invalid action", map[string]string{"action": "must be getSignedUrl or download"}))
	}
}

const maxUploadMemory = 8 << 20

// Upload accepts a multipart artifact, stores it under the caller's own
// prefix, and returns the reference to record on the submission.
func (h *StorageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	kind := app.ArtifactKind(chi.URLParam(r, "kind"))
	if h.limiter != nil {
		key := "upload:" + actor.UserID.String()
		if !h.limiter.Allow(key, 10, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "upload rate limit exceeded", nil))
			return
		}
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.Error(w, common.NewValidationError("invalid multipart body", nil))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"file": "file part is required"}))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ref, err := h.artifacts.UploadArtifact(r.Context(), actor, kind, header.Filename, contentType, header.Size, file)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{"reference": ref})
}

// ListUploads returns the caller's stored objects of one kind.
func (h *StorageHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	kind := app.ArtifactKind(chi.URLParam(r, "kind"))
	entries, err := h.artifacts.ListUploads(r.Context(), actor, kind)
	if err != nil {
		response.Error(w, err)
		return
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	response.JSON(w, http.StatusOK, entries)
}
