package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/NuvaGit/CaitlinPortfolio/internal/auth"
	"github.com/NuvaGit/CaitlinPortfolio/internal/handlers"
	"github.com/NuvaGit/CaitlinPortfolio/internal/middleware"
	"github.com/NuvaGit/CaitlinPortfolio/internal/pdftext"
)

const (
	testSecret        = "test-secret"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery staple"
	testAdminName     = "Caitlin"
)

// newTestRouter mounts the API the same way main does, minus rate
// limiting and uploads.
func newTestRouter(store *memStore) *chi.Mux {
	secret := []byte(testSecret)
	postsHandler := handlers.NewPostsHandler(store)
	authHandler := handlers.NewAuthHandler(store, testAdminEmail, testAdminPassword, testAdminName, secret)
	pdfHandler := handlers.NewPDFHandler(pdftext.NewExtractor())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(secret))
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/posts", postsHandler.List)
		r.Get("/posts/slug/{slug}", postsHandler.GetBySlug)
		r.Get("/posts/{id}", postsHandler.GetByID)
		r.Put("/posts/{id}/like", postsHandler.Like)
		r.Post("/posts/{id}/comment", postsHandler.Comment)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly)
			r.Post("/posts", postsHandler.Create)
			r.Put("/posts/{id}", postsHandler.Update)
			r.Delete("/posts/{id}", postsHandler.Delete)
			r.Post("/extract-pdf", pdfHandler.Extract)
		})
	})
	return r
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateTokenWithExpiry([]byte(testSecret), "user-1", testAdminName, auth.RoleAdmin, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
