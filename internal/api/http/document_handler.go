package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/security"
	"mutuelle-membership/internal/storage"
)

// DocumentReader is the read side of document storage.
type DocumentReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// DocumentHandler serves stored documents behind signed download links
type DocumentHandler struct {
	store  DocumentReader
	tokens security.TokenManager
}

func NewDocumentHandler(store DocumentReader, tokens security.TokenManager) *DocumentHandler {
	return &DocumentHandler{
		store:  store,
		tokens: tokens,
	}
}

// HandleDownload handles GET /api/v1/documents/{token}
func (h *DocumentHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	token := mux.Vars(r)["token"]
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	claims, err := h.tokens.ValidateDownloadToken(token)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, security.ErrExpiredToken) {
			status = http.StatusGone
		}
		logger.Warn("Document download refused", "error", err, "status", status)
		http.Error(w, http.StatusText(status), status)
		return
	}

	file, size, err := h.store.Open(r.Context(), claims.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			http.Error(w, "Document not found", http.StatusNotFound)
			return
		}
		logger.Error("Failed to open document", "key", claims.Key, "error", err)
		http.Error(w, "Failed to read document", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentTypeFor(claims.Key))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(claims.Key)))
	w.Header().Set("Cache-Control", "private, no-store")

	written, err := io.Copy(w, file)
	if err != nil {
		logger.Warn("Document download interrupted", "key", claims.Key, "written", written, "error", err)
		return
	}
	logger.Info("Document downloaded",
		"key", claims.Key,
		"request_id", claims.RequestID,
		"bytes", written,
		"duration_ms", time.Since(start).Milliseconds())
}

func contentTypeFor(key string) string {
	switch path.Ext(key) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// RegisterDocumentRoutes registers the document download endpoint
func RegisterDocumentRoutes(router *mux.Router, store DocumentReader, tokens security.TokenManager) {
	handler := NewDocumentHandler(store, tokens)
	router.HandleFunc("/api/v1/documents/{token}", handler.HandleDownload).Methods(http.MethodGet)
}

// RegisterHealthRoute registers a liveness check
func RegisterHealthRoute(router *mux.Router) {
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
}
