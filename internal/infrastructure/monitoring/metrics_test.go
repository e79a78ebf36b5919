package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	// Two collectors in one process must not collide.
	a := NewMetrics()
	b := NewMetrics()

	a.IncIdleShutdowns()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.IdleShutdowns))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.IdleShutdowns))
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/file/view", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/file/view?path=a.txt", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/file/view", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestsActive))

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestAddBytes(t *testing.T) {
	m := NewMetrics()

	m.AddBytes(DirectionDownload, 100)
	m.AddBytes(DirectionArchive, 50)
	m.AddBytes(DirectionUpload, 10)
	m.AddBytes(DirectionUpload, 0)

	assert.Equal(t, float64(100), testutil.ToFloat64(m.BytesTransferred.WithLabelValues(DirectionDownload)))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.BytesTransferred.WithLabelValues(DirectionUpload)))

	snap := m.Snapshot()
	assert.Equal(t, int64(150), snap.BytesOut)
	assert.Equal(t, int64(10), snap.BytesIn)
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	NewTimer(m, "copy").Stop(nil)
	NewTimer(m, "copy").Stop(errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FileOps.WithLabelValues("copy", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FileOps.WithLabelValues("copy", "error")))
}

func TestHandlerExposition(t *testing.T) {
	m := NewMetrics()
	m.IncStreamDisconnects()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "filedeck_stream_disconnects_total 1"))
	assert.True(t, strings.Contains(string(body), "filedeck_uptime_seconds"))
}
