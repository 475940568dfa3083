package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/handler"
	"github.com/stemsi/school-directory/internal/middleware"
	"github.com/stemsi/school-directory/internal/repository"
	"github.com/stemsi/school-directory/internal/service"
	"github.com/stemsi/school-directory/internal/validator"
	"github.com/stemsi/school-directory/internal/web"
)

func setup(t *testing.T, apiURL string, submitRate int) http.Handler {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:         "test",
		APIBaseURL:      apiURL,
		MaxUploadBytes:  1 << 20,
		SubmitRateLimit: submitRate,
		StaticMaxAge:    600,
	}
	log := zerolog.Nop()

	tmpl, err := web.Templates()
	require.NoError(t, err)

	repo := repository.NewSchoolRepository(cfg)
	handlers := &Handlers{
		Page:   handler.NewPageHandler(),
		School: handler.NewSchoolHandler(service.NewSchoolService(repo, log), service.NewMediaService(cfg), cfg, log),
		System: handler.NewSystemHandler(),
	}

	limiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	return SetupRouter(handlers, tmpl, limiter, cfg, log)
}

func get(h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":3,"name":"Lakeside","address":"3 Shore Ln","city":"Lakeview"}]`)
	}))
	defer api.Close()
	h := setup(t, api.URL, 30)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "School Management System"},
		{"/addSchool", http.StatusOK, "Add New School"},
		{"/showSchools", http.StatusOK, "Loading schools..."},
		{"/showSchools/list", http.StatusOK, "Lakeside"},
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/missing", http.StatusNotFound, "Back to Home"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(h, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestSchoolListIsNotCached(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer api.Close()

	w := get(setup(t, api.URL, 30), "/showSchools/list", nil)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestStaticAssets(t *testing.T) {
	h := setup(t, "http://127.0.0.1:1", 30)

	w := get(h, "/static/app.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=600", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")

	w = get(h, "/static/app.js", map[string]string{"Accept-Encoding": "br"})
	assert.Equal(t, http.StatusOK, w.Code)
	if w.Header().Get("Content-Encoding") == "br" {
		js, err := io.ReadAll(brotli.NewReader(w.Body))
		require.NoError(t, err)
		assert.Contains(t, string(js), "data-submit-form")
	} else {
		assert.Contains(t, w.Body.String(), "data-submit-form")
	}
}

func TestPagesAreCompressed(t *testing.T) {
	h := setup(t, "http://127.0.0.1:1", 30)

	w := get(h, "/addSchool", map[string]string{"Accept-Encoding": "br"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))

	page, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Add New School")
}

func TestSubmitRateLimited(t *testing.T) {
	h := setup(t, "http://127.0.0.1:1", 1)

	post := func() *httptest.ResponseRecorder {
		form := url.Values{"name": {"x"}}
		req := httptest.NewRequest(http.MethodPost, "/addSchool", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "text/html")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnprocessableEntity, post().Code)

	w := post()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many requests")

	// Reading pages is never limited.
	assert.Equal(t, http.StatusOK, get(h, "/addSchool", nil).Code)
}
