package controllers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatePayload() map[string]interface{} {
	return map[string]interface{}{
		"title":                "Machine Learning Basics",
		"description":          "A gentle introduction",
		"goals":                []string{"understand gradient descent"},
		"preferredDifficulty":  "beginner",
		"availableTimePerWeek": 6,
		"durationWeeks":        8,
		"preferredTopics":      []string{"python", "statistics"},
	}
}

func TestGeneratePathCreatesActivePath(t *testing.T) {
	mlService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-path", r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"learning_path": {"overview": "ML in 8 weeks", "weekly_plan": []},
			"resource_count": {"videos": 10, "articles": 14}
		}`))
	}))
	defer mlService.Close()

	app, _ := setupApp(t, mlService.URL)
	token := registerUser(t, app, "Ada", "ada@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/api/ml/generate-path", token, generatePayload())
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	pathID, ok := body["pathId"].(float64)
	require.True(t, ok, "body: %v", body)
	summary := body["path"].(map[string]interface{})
	assert.Equal(t, "active", summary["status"])
	counts := body["resourceCount"].(map[string]interface{})
	assert.Equal(t, float64(10), counts["videos"])

	// The persisted path is active, carries the curriculum, and got its
	// schedule stamped on activation.
	status, body = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/learning-paths/%d", int(pathID)), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, true, data["mlGenerated"])
	assert.NotEmpty(t, data["startDate"])
	assert.NotEmpty(t, data["expectedEndDate"])
	content := data["mlGeneratedContent"].(map[string]interface{})
	assert.Equal(t, "ML in 8 weeks", content["overview"])
}

func TestGeneratePathServiceUnavailable(t *testing.T) {
	mlService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mlService.Close() // connection refused from here on

	app, _ := setupApp(t, mlService.URL)
	token := registerUser(t, app, "Ada", "ada@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/api/ml/generate-path", token, generatePayload())
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, false, body["success"])

	// Nothing was persisted for the failed generation.
	status, body = doRequest(t, app, http.MethodGet, "/api/learning-paths/", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestGeneratePathGenerationRejected(t *testing.T) {
	mlService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "no curriculum fits these constraints"}`))
	}))
	defer mlService.Close()

	app, _ := setupApp(t, mlService.URL)
	token := registerUser(t, app, "Ada", "ada@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/api/ml/generate-path", token, generatePayload())
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["message"], "no curriculum fits these constraints")
}

func TestGeneratePathValidation(t *testing.T) {
	// The gateway must not be called for invalid input.
	mlService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("generation service called despite invalid input")
	}))
	defer mlService.Close()

	app, _ := setupApp(t, mlService.URL)
	token := registerUser(t, app, "Ada", "ada@example.com")

	payload := generatePayload()
	payload["durationWeeks"] = 0

	status, body := doRequest(t, app, http.MethodPost, "/api/ml/generate-path", token, payload)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	details := body["details"].(map[string]interface{})
	assert.Contains(t, details, "durationWeeks")
}

func TestMLHealthCheck(t *testing.T) {
	mlService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status": "healthy", "model_loaded": true}`))
	}))
	defer mlService.Close()

	app, _ := setupApp(t, mlService.URL)
	token := registerUser(t, app, "Ada", "ada@example.com")

	status, body := doRequest(t, app, http.MethodGet, "/api/ml/health", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestMLHealthCheckUnhealthy(t *testing.T) {
	mlService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mlService.Close()

	app, _ := setupApp(t, mlService.URL)
	token := registerUser(t, app, "Ada", "ada@example.com")

	status, body := doRequest(t, app, http.MethodGet, "/api/ml/health", token, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
}
