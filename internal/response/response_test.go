package response

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New(ErrorTemplate).Parse(
		`<p data-status="{{.Status}}">{{.Message}}</p><small>{{.RequestID}}</small>`)))
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"hello": "world"}) })
	r.GET("/fail", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrNotFound) })
	r.GET("/abort", func(c *gin.Context) {
		AbortFail(c, http.StatusTooManyRequests, ErrRateLimitExceeded)
	}, func(c *gin.Context) {
		c.String(http.StatusOK, "unreachable")
	})
	return r
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Error)
	assert.Equal(t, map[string]interface{}{"hello": "world"}, body.Data)
	assert.Equal(t, w.Header().Get("X-Request-ID"), body.Metadata.RequestID)
	assert.NotEmpty(t, body.Metadata.Timestamp)
}

func TestFailJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrNotFound, body.Error.Code)
	assert.Equal(t, GetMessage(ErrNotFound), body.Error.Message)
}

func TestFailHTML(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `data-status="404"`)
	assert.Contains(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestAbortFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/abort", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), string(ErrRateLimitExceeded))
	assert.NotContains(t, w.Body.String(), "unreachable")
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine()

	t.Run("generates", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	t.Run("reuses valid uuid", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Request-ID", id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Request-ID", "<script>alert(1)</script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get("X-Request-ID")
		assert.NotContains(t, got, "script")
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestGetMessageDefault(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("SOMETHING_ELSE")))
}
