package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequireAuth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		subject, _ := GetSubject(c)
		c.String(http.StatusOK, subject)
	})
	return r
}

func TestToken_RoundTrip(t *testing.T) {
	token, err := NewToken(testSecret, "pmo-bot", time.Hour, time.Now())
	require.NoError(t, err)

	subject, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "pmo-bot", subject)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	token, err := NewToken(testSecret, "pmo-bot", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestNewToken_RequiresSubjectAndSecret(t *testing.T) {
	_, err := NewToken(testSecret, " ", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = NewToken("", "pmo-bot", time.Hour, time.Now())
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	r := authRouter()
	valid, err := NewToken(testSecret, "alice", time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice", w.Body.String())
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestLogger_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), Logger(logger))
	r.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/missing", line["path"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
	assert.Equal(t, w.Header().Get(RequestIDHeader), line["request_id"])
}

type routeRecorder struct {
	routes []string
}

func (r *routeRecorder) AssignmentGrabbed(models.AssignmentRole)  {}
func (r *routeRecorder) AssignmentReleased(models.AssignmentRole) {}
func (r *routeRecorder) ReleaseConflict()                         {}
func (r *routeRecorder) TimelineBuilt(bool, time.Duration)        {}
func (r *routeRecorder) HTTPRequest(_, route string, _ int, _ time.Duration) {
	r.routes = append(r.routes, route)
}

func TestMetrics_LabelsByRoute(t *testing.T) {
	rec := &routeRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/threads/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/threads/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, []string{"/threads/:id", "unmatched"}, rec.routes)
}
