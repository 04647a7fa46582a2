package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filterRouter exposes parseReportFilter behind a handler with a
// seeded admin identity.
func filterRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/filter", func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: 1, CompanyID: 7, IsAdmin: true})
		f, ok := parseReportFilter(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"courseId": f.CourseID})
	})
	return r
}

func TestParseReportFilterRejectsMalformedCourseID(t *testing.T) {
	router := filterRouter()

	for _, raw := range []string{"abc", "-3", "1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/filter?courseId="+raw, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "courseId=%s", raw)
	}
}

func TestParseReportFilterRejectsMalformedDates(t *testing.T) {
	router := filterRouter()

	req := httptest.NewRequest(http.MethodGet, "/filter?from=01/02/2026", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/filter?to=yesterday", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseReportFilterAcceptsValidParams(t *testing.T) {
	router := filterRouter()

	req := httptest.NewRequest(http.MethodGet,
		"/filter?courseId=5&from=2026-01-01&to=2026-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"courseId":5`)
}
