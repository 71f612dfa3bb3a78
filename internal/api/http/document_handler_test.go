package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "mutuelle-membership/internal/api/http"
	"mutuelle-membership/internal/security"
	"mutuelle-membership/internal/storage"
)

func newRouter(t *testing.T) (*mux.Router, *storage.LocalStorage, security.TokenManager) {
	t.Helper()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef")
	store, err := storage.NewLocalStorage("http://localhost:8080", t.TempDir(), tokens)
	require.NoError(t, err)

	router := mux.NewRouter()
	api.RegisterDocumentRoutes(router, store, tokens)
	api.RegisterHealthRoute(router)
	return router, store, tokens
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleDownload_Success(t *testing.T) {
	router, store, _ := newRouter(t)
	key := "credentials/req-1/credentials-MUT-2026-00001.pdf"
	require.NoError(t, store.Save(context.Background(), key, []byte("%PDF-1.3 body")))

	link, err := store.DownloadURL(key, "req-1", time.Hour)
	require.NoError(t, err)

	rec := get(router, strings.TrimPrefix(link, "http://localhost:8080"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "credentials-MUT-2026-00001.pdf")
	assert.Equal(t, "%PDF-1.3 body", rec.Body.String())
}

func TestHandleDownload_InvalidToken(t *testing.T) {
	router, _, _ := newRouter(t)

	rec := get(router, "/api/v1/documents/not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleDownload_ForeignSignature(t *testing.T) {
	router, _, _ := newRouter(t)
	other := security.NewTokenManager("another-secret-another-secret-xx")
	token, err := other.GenerateDownloadToken("credentials/req-1/c.pdf", "req-1", time.Hour)
	require.NoError(t, err)

	rec := get(router, "/api/v1/documents/"+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleDownload_ExpiredToken(t *testing.T) {
	router, _, tokens := newRouter(t)
	token, err := tokens.GenerateDownloadToken("credentials/req-1/c.pdf", "req-1", -time.Minute)
	require.NoError(t, err)

	rec := get(router, "/api/v1/documents/"+token)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestHandleDownload_MissingDocument(t *testing.T) {
	router, _, tokens := newRouter(t)
	token, err := tokens.GenerateDownloadToken("credentials/req-9/gone.pdf", "req-9", time.Hour)
	require.NoError(t, err)

	rec := get(router, "/api/v1/documents/"+token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthRoute(t *testing.T) {
	router, _, _ := newRouter(t)

	rec := get(router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
