package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email          string `json:"email" validate:"required,email"`
	WouldWorkAgain string `json:"would_work_again" validate:"required,oneof=yes no maybe"`
	TextReview     string `json:"text_review" validate:"omitempty,min=50,max=2000"`
}

func bindProbe(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var payload samplePayload
	ok := bindAndValidate(c, &payload)
	return w, ok
}

func TestBindAndValidateAcceptsValidPayload(t *testing.T) {
	w, ok := bindProbe(t, `{"email":"a@example.com","would_work_again":"maybe"}`)
	require.True(t, ok)
	require.Empty(t, w.Body.String())
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	w, ok := bindProbe(t, `{"email":`)
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid JSON payload")
}

func TestBindAndValidateReportsFieldFailures(t *testing.T) {
	w, ok := bindProbe(t, `{"email":"not-an-email","would_work_again":"definitely"}`)
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "email must be a valid email address")
	require.Contains(t, w.Body.String(), "would work again must be one of: yes no maybe")
}

func TestBindAndValidateEnforcesTextBounds(t *testing.T) {
	short := `{"email":"a@example.com","would_work_again":"yes","text_review":"` + strings.Repeat("x", 49) + `"}`
	w, ok := bindProbe(t, short)
	require.False(t, ok)
	require.Contains(t, w.Body.String(), "text review must be at least 50 characters")

	long := `{"email":"a@example.com","would_work_again":"yes","text_review":"` + strings.Repeat("x", 50) + `"}`
	_, ok = bindProbe(t, long)
	require.True(t, ok)
}

func TestParseIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=25&bad=abc", nil)

	require.Equal(t, 25, parseIntQuery(c, "limit", 20))
	require.Equal(t, 20, parseIntQuery(c, "bad", 20))
	require.Equal(t, 20, parseIntQuery(c, "missing", 20))
}
