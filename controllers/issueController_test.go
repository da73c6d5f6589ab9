package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"citysense-be/middlewares"
	"citysense-be/models"
	"citysense-be/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testMailer() *services.EmailService {
	// No credentials, so every send is a logged no-op.
	return services.NewEmailService("", 0, "", "", "admin@example.com")
}

// identity injects an authenticated caller without going through JWT.
func identity(uid string) gin.HandlerFunc {
	return func(c *gin.Context) { c.Set(middlewares.UserIDKey, uid) }
}

func issueTestRouter(ctrl *IssueController, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.ErrorHandler(false))

	group := r.Group("/api/issues")
	group.GET("", middlewares.ValidateQuery(), ctrl.ListIssues)
	group.GET("/stats/overview", ctrl.StatsOverview)
	group.GET("/user/:userId", identity(uid), ctrl.GetIssuesByUser)
	group.GET("/:id", ctrl.GetIssue)
	group.POST("", identity(uid), ctrl.CreateIssue)
	group.POST("/:id/upvote", identity(uid), ctrl.ToggleUpvote)
	group.PATCH("/:id/status", identity(uid), ctrl.UpdateStatus)
	group.DELETE("/:id", identity(uid), ctrl.DeleteIssue)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListIssuesPagination(t *testing.T) {
	issues := make([]*models.Issue, 0, 25)
	for i := 0; i < 25; i++ {
		issues = append(issues, &models.Issue{
			Title:     fmt.Sprintf("Pothole %d", i),
			Category:  models.Pothole,
			Status:    models.Open,
			Severity:  3,
			Timestamp: time.Now().Add(-time.Duration(i) * time.Hour),
		})
	}
	ctrl := NewIssueController(newFakeIssueStore(issues...), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "")

	w := doJSON(t, r, http.MethodGet, "/api/issues?category=Pothole&page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["issues"], 10)

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["page"])
	assert.EqualValues(t, 10, pagination["limit"])
	assert.EqualValues(t, 25, pagination["totalCount"])
	assert.EqualValues(t, 3, pagination["totalPages"])
}

func TestListIssuesFilterExcludes(t *testing.T) {
	ctrl := NewIssueController(newFakeIssueStore(
		&models.Issue{Title: "Pothole on MG Road", Category: models.Pothole, Status: models.Open, Severity: 3, Timestamp: time.Now()},
		&models.Issue{Title: "Overflowing bin", Category: models.GarbageDumping, Status: models.Open, Severity: 2, Timestamp: time.Now()},
	), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "")

	w := doJSON(t, r, http.MethodGet, "/api/issues?category=Pothole", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.Len(t, body["issues"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["totalCount"])
}

func TestGetIssueNotFound(t *testing.T) {
	ctrl := NewIssueController(newFakeIssueStore(), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "")

	w := doJSON(t, r, http.MethodGet, "/api/issues/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Issue not found")
}

func TestGetIssueInvalidID(t *testing.T) {
	ctrl := NewIssueController(newFakeIssueStore(), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "")

	w := doJSON(t, r, http.MethodGet, "/api/issues/not-a-hex-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func validIssueBody() map[string]any {
	return map[string]any{
		"title":       "Deep pothole near school",
		"description": "A deep pothole that fills with water when it rains",
		"category":    "Pothole",
		"severity":    4,
		"location": map[string]any{
			"lat":     12.97,
			"lng":     77.59,
			"address": "MG Road",
		},
	}
}

func TestCreateIssue(t *testing.T) {
	reporter := &models.User{Email: "citizen@example.com", Role: models.RoleCitizen}
	users := newFakeUserStore(reporter)
	store := newFakeIssueStore()
	ctrl := NewIssueController(store, users, testMailer())
	r := issueTestRouter(ctrl, reporter.ID.Hex())

	w := doJSON(t, r, http.MethodPost, "/api/issues", validIssueBody())
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Open", body["status"])
	assert.Equal(t, reporter.ID.Hex(), body["userId"])
	assert.NotEmpty(t, body["id"])

	// Reporter counter bumps.
	updated, err := users.GetByID(context.Background(), reporter.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, updated.IssuesReported)
}

func TestCreateIssueValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"title too short", func(b map[string]any) { b["title"] = "ab" }},
		{"description too short", func(b map[string]any) { b["description"] = "short" }},
		{"severity out of range", func(b map[string]any) { b["severity"] = 6 }},
		{"unknown category", func(b map[string]any) { b["category"] = "Sinkhole" }},
		{"missing location", func(b map[string]any) { delete(b, "location") }},
		{"latitude out of range", func(b map[string]any) {
			b["location"] = map[string]any{"lat": 95.0, "lng": 77.59}
		}},
		{"longitude out of range", func(b map[string]any) {
			b["location"] = map[string]any{"lat": 12.97, "lng": 200.0}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := NewIssueController(newFakeIssueStore(), newFakeUserStore(), testMailer())
			r := issueTestRouter(ctrl, primitive.NewObjectID().Hex())

			body := validIssueBody()
			tc.mutate(body)
			w := doJSON(t, r, http.MethodPost, "/api/issues", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestToggleUpvote(t *testing.T) {
	issue := &models.Issue{Title: "Streetlight out", Category: models.BrokenStreetlight, Status: models.Open, Severity: 2, Timestamp: time.Now()}
	ctrl := NewIssueController(newFakeIssueStore(issue), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "voter-1")

	w := doJSON(t, r, http.MethodPost, "/api/issues/"+issue.ID.Hex()+"/upvote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["voted"])
	assert.EqualValues(t, 1, body["upvotes"])

	// Second call removes the vote.
	w = doJSON(t, r, http.MethodPost, "/api/issues/"+issue.ID.Hex()+"/upvote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, false, body["voted"])
	assert.EqualValues(t, 0, body["upvotes"])
}

func TestUpdateStatusResolveAndReopen(t *testing.T) {
	reporter := &models.User{Email: "citizen@example.com", Role: models.RoleCitizen}
	issue := &models.Issue{Title: "Pothole", Category: models.Pothole, Status: models.Open, Severity: 3, UserID: reporter.ID.Hex(), Timestamp: time.Now()}
	store := newFakeIssueStore(issue)
	adminID := primitive.NewObjectID().Hex()
	ctrl := NewIssueController(store, newFakeUserStore(reporter), testMailer())
	r := issueTestRouter(ctrl, adminID)

	w := doJSON(t, r, http.MethodPatch, "/api/issues/"+issue.ID.Hex()+"/status", map[string]any{"status": "Resolved"})
	require.Equal(t, http.StatusOK, w.Code)

	resolved := store.find(issue.ID.Hex())
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, adminID, *resolved.ResolvedBy)

	// Reopening clears the resolution fields.
	w = doJSON(t, r, http.MethodPatch, "/api/issues/"+issue.ID.Hex()+"/status", map[string]any{"status": "Open"})
	require.Equal(t, http.StatusOK, w.Code)

	reopened := store.find(issue.ID.Hex())
	assert.Equal(t, models.Open, reopened.Status)
	assert.Nil(t, reopened.ResolvedAt)
	assert.Nil(t, reopened.ResolvedBy)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	issue := &models.Issue{Title: "Pothole", Category: models.Pothole, Status: models.Open, Severity: 3, Timestamp: time.Now()}
	ctrl := NewIssueController(newFakeIssueStore(issue), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "admin-1")

	w := doJSON(t, r, http.MethodPatch, "/api/issues/"+issue.ID.Hex()+"/status", map[string]any{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid status")
}

func TestGetIssuesByUserAccess(t *testing.T) {
	admin := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	citizen := &models.User{Email: "citizen@example.com", Role: models.RoleCitizen}
	other := &models.User{Email: "other@example.com", Role: models.RoleCitizen}
	users := newFakeUserStore(admin, citizen, other)

	store := newFakeIssueStore(
		&models.Issue{Title: "Mine", Category: models.Pothole, Status: models.Open, Severity: 3, UserID: citizen.ID.Hex(), Timestamp: time.Now()},
	)
	ctrl := NewIssueController(store, users, testMailer())

	t.Run("owner sees own issues", func(t *testing.T) {
		r := issueTestRouter(ctrl, citizen.ID.Hex())
		w := doJSON(t, r, http.MethodGet, "/api/issues/user/"+citizen.ID.Hex(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["issues"], 1)
	})

	t.Run("other citizen denied", func(t *testing.T) {
		r := issueTestRouter(ctrl, other.ID.Hex())
		w := doJSON(t, r, http.MethodGet, "/api/issues/user/"+citizen.ID.Hex(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Access denied")
	})

	t.Run("admin sees anyone", func(t *testing.T) {
		r := issueTestRouter(ctrl, admin.ID.Hex())
		w := doJSON(t, r, http.MethodGet, "/api/issues/user/"+citizen.ID.Hex(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestDeleteIssue(t *testing.T) {
	issue := &models.Issue{Title: "Pothole", Category: models.Pothole, Status: models.Open, Severity: 3, Timestamp: time.Now()}
	store := newFakeIssueStore(issue)
	ctrl := NewIssueController(store, newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "admin-1")

	w := doJSON(t, r, http.MethodDelete, "/api/issues/"+issue.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/issues/"+issue.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsOverviewEndpoint(t *testing.T) {
	ctrl := NewIssueController(newFakeIssueStore(
		&models.Issue{Title: "A", Category: models.Pothole, Status: models.Open, Severity: 3, Timestamp: time.Now()},
		&models.Issue{Title: "B", Category: models.Pothole, Status: models.Resolved, Severity: 5, Timestamp: time.Now()},
	), newFakeUserStore(), testMailer())
	r := issueTestRouter(ctrl, "")

	w := doJSON(t, r, http.MethodGet, "/api/issues/stats/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["open"])
	assert.EqualValues(t, 1, body["resolved"])

	severity := body["severityDistribution"].(map[string]any)
	assert.Len(t, severity, 5)
}
