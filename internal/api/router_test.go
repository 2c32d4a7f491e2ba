package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/managerate/managerate/internal/app"
	iauth "github.com/managerate/managerate/internal/auth"
	"github.com/managerate/managerate/internal/database/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Limit  int   `json:"limit"`
		Offset int   `json:"offset"`
		Total  int64 `json:"total"`
	} `json:"meta"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-test-secret", Issuer: "managerate"})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Server.RateLimit.MaxRequests = 1000
	cfg.Server.RateLimit.Window = time.Minute

	router, err := NewRouter(db, jwt, cfg, nil)
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func signUp(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func createManager(t *testing.T, r *gin.Engine, token, name, company string) string {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/managers", token, gin.H{
		"name":    name,
		"company": company,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ID)
	return data.ID
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
}

func TestSPAFallbackServesIndex(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/managers/some-client-route", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ManageRate")
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)

	token := signUp(t, r, "flow@example.com")

	// Duplicate signup conflicts.
	w, env := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "flow@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)

	// Login works with the right password and fails closed otherwise.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Token grants access to the profile endpoint.
	w, env = doJSON(t, r, http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "flow@example.com", me.Email)

	// Missing token is rejected.
	w, _ = doJSON(t, r, http.MethodGet, "/api/user/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReviewAndAggregateFlow(t *testing.T) {
	r := newTestRouter(t)

	token := signUp(t, r, "author@example.com")
	managerID := createManager(t, r, token, "Ada Lovelace", "Acme")

	// Reviews require authentication.
	w, _ := doJSON(t, r, http.MethodPost, "/api/reviews", "", gin.H{"manager_id": managerID})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	review := gin.H{
		"manager_id":        managerID,
		"overall_rating":    5,
		"communication":     4,
		"fairness":          5,
		"growth_support":    4,
		"work_life_balance": 3,
		"would_work_again":  "yes",
	}
	w, _ = doJSON(t, r, http.MethodPost, "/api/reviews", token, review)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A second review for the same manager is a conflict.
	w, env := doJSON(t, r, http.MethodPost, "/api/reviews", token, review)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)

	// Out-of-range ratings are rejected before reaching the database.
	bad := gin.H{
		"manager_id":        managerID,
		"overall_rating":    6,
		"communication":     4,
		"fairness":          5,
		"growth_support":    4,
		"work_life_balance": 3,
		"would_work_again":  "yes",
	}
	w, _ = doJSON(t, r, http.MethodPost, "/api/reviews", token, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Aggregates reflect the single stored review. The detail route takes an
	// optional bearer token: anonymous and authenticated reads both succeed.
	w, env = doJSON(t, r, http.MethodGet, "/api/managers/"+managerID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	authed, _ := doJSON(t, r, http.MethodGet, "/api/managers/"+managerID, token, nil)
	require.Equal(t, http.StatusOK, authed.Code)

	var detail struct {
		Name  string `json:"name"`
		Stats struct {
			ReviewCount int64    `json:"review_count"`
			AvgRating   *float64 `json:"avg_rating"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Equal(t, "Ada Lovelace", detail.Name)
	require.Equal(t, int64(1), detail.Stats.ReviewCount)
	require.NotNil(t, detail.Stats.AvgRating)
	require.InDelta(t, 5.0, *detail.Stats.AvgRating, 0.0001)

	// Listing includes pagination metadata; the author is anonymous by default.
	w, env = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/reviews/manager/%s?limit=10", managerID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	require.Equal(t, int64(1), env.Meta.Total)

	var listed []struct {
		IsAnonymous   bool    `json:"is_anonymous"`
		ReviewerEmail *string `json:"reviewer_email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	require.True(t, listed[0].IsAnonymous)
	require.Nil(t, listed[0].ReviewerEmail)
}

func TestVerificationFlow(t *testing.T) {
	r := newTestRouter(t)

	token := signUp(t, r, "verified@example.com")
	managerID := createManager(t, r, token, "Grace Hopper", "Initech")

	review := gin.H{
		"manager_id":        managerID,
		"overall_rating":    4,
		"communication":     4,
		"fairness":          4,
		"growth_support":    4,
		"work_life_balance": 4,
		"would_work_again":  "maybe",
	}
	w, _ := doJSON(t, r, http.MethodPost, "/api/reviews", token, review)
	require.Equal(t, http.StatusCreated, w.Code)

	// SMTP is disabled in tests so the issued code is echoed back.
	w, env := doJSON(t, r, http.MethodPost, "/api/verification/request", token, gin.H{
		"manager_id": managerID,
		"work_email": "verified@initech.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var issued struct {
		DebugCode string `json:"debug_code"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &issued))
	require.Len(t, issued.DebugCode, 6)

	// Wrong code is rejected.
	w, env = doJSON(t, r, http.MethodPost, "/api/verification/confirm", token, gin.H{
		"manager_id": managerID,
		"code":       "000000",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_CODE", env.Error.Code)

	// The real code confirms and flips the review's badge.
	w, _ = doJSON(t, r, http.MethodPost, "/api/verification/confirm", token, gin.H{
		"manager_id": managerID,
		"code":       issued.DebugCode,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/user/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard struct {
		Stats struct {
			TotalReviews    int64 `json:"total_reviews"`
			VerifiedReviews int64 `json:"verified_reviews"`
		} `json:"stats"`
		Verifications []struct {
			ManagerName string `json:"manager_name"`
		} `json:"verifications"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	require.Equal(t, int64(1), dashboard.Stats.TotalReviews)
	require.Equal(t, int64(1), dashboard.Stats.VerifiedReviews)
	require.Len(t, dashboard.Verifications, 1)
	require.Equal(t, "Grace Hopper", dashboard.Verifications[0].ManagerName)

	// Replaying the code is rejected and never reverts the badge.
	w, _ = doJSON(t, r, http.MethodPost, "/api/verification/confirm", token, gin.H{
		"manager_id": managerID,
		"code":       issued.DebugCode,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	_, env = doJSON(t, r, http.MethodGet, "/api/user/dashboard", token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	require.Equal(t, int64(1), dashboard.Stats.VerifiedReviews)
}

func TestManagerDiscoveryEndpoints(t *testing.T) {
	r := newTestRouter(t)

	token := signUp(t, r, "discovery@example.com")
	createManager(t, r, token, "Ada Lovelace", "Acme")
	createManager(t, r, token, "Grace Hopper", "Initech")

	w, env := doJSON(t, r, http.MethodGet, "/api/managers/search?q=ada", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	require.Equal(t, "Ada Lovelace", results[0].Name)

	w, env = doJSON(t, r, http.MethodGet, "/api/managers/companies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var companies []string
	require.NoError(t, json.Unmarshal(env.Data, &companies))
	require.Equal(t, []string{"Acme", "Initech"}, companies)

	w, env = doJSON(t, r, http.MethodGet, "/api/managers/trending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var trending []struct {
		Name        string `json:"name"`
		ReviewCount int64  `json:"review_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &trending))
	require.Empty(t, trending) // no reviews yet, nothing trends
}
