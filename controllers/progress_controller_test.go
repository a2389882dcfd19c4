package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackActivity(t *testing.T) {
	app, _ := setupApp(t, "")
	token := registerUser(t, app, "Ada", "ada@example.com")
	pathID := createDraftPath(t, app, token, 4)

	status, body := doRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/learning-paths/%d/track-activity", pathID), token,
		map[string]interface{}{
			"resourceId":      "res-7",
			"interactionType": "viewed",
		})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, analytics := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/learning-paths/%d/analytics", pathID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := analytics["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["totalInteractions"])
	assert.Equal(t, float64(0), data["totalSessions"])
}

func TestTrackActivityValidation(t *testing.T) {
	app, _ := setupApp(t, "")
	token := registerUser(t, app, "Ada", "ada@example.com")
	pathID := createDraftPath(t, app, token, 4)
	target := fmt.Sprintf("/api/learning-paths/%d/track-activity", pathID)

	status, _ := doRequest(t, app, http.MethodPost, target, token, map[string]string{
		"interactionType": "viewed",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, target, token, map[string]string{
		"resourceId":      "res-7",
		"interactionType": "stared-at",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdateWeekProgressEndpoint(t *testing.T) {
	app, _ := setupApp(t, "")
	token := registerUser(t, app, "Ada", "ada@example.com")
	pathID := createDraftPath(t, app, token, 4)

	status, body := doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/learning-paths/%d/weeks/1/progress", pathID), token,
		map[string]interface{}{
			"resourcesCompleted": []string{"res-1"},
			"progressPercentage": 40,
		})
	require.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	week := data["progress"].(map[string]interface{})
	assert.Equal(t, float64(40), week["progress_percentage"])
	assert.Equal(t, []interface{}{"res-1"}, week["resources_completed"])
	assert.Equal(t, false, week["completed"])

	status, _ = doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/learning-paths/%d/weeks/zero/progress", pathID), token,
		map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCompleteWeekEndpoint(t *testing.T) {
	app, _ := setupApp(t, "")
	token := registerUser(t, app, "Ada", "ada@example.com")
	pathID := createDraftPath(t, app, token, 2)

	status, body := doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/learning-paths/%d/weeks/1/complete", pathID), token,
		map[string]interface{}{
			"hoursSpent":      2,
			"reflectionNotes": "went well",
			"confidence":      4,
		})
	require.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	progress := data["newProgress"].(map[string]interface{})
	assert.Equal(t, float64(50), progress["completion_percentage"])
	assert.Equal(t, float64(2), progress["current_week"])

	status, body = doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/learning-paths/%d/weeks/2/complete", pathID), token,
		map[string]interface{}{"hoursSpent": 2})
	require.Equal(t, fiber.StatusOK, status)

	data = body["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	progress = data["newProgress"].(map[string]interface{})
	assert.Equal(t, float64(100), progress["completion_percentage"])
	assert.Equal(t, float64(4), progress["total_hours_logged"])

	// The persisted path carries the completion and an actual end date.
	status, body = doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/learning-paths/%d", pathID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	path := body["data"].(map[string]interface{})
	assert.Equal(t, "completed", path["status"])
	assert.NotEmpty(t, path["actualEndDate"])
}

func TestCompleteWeekValidation(t *testing.T) {
	app, _ := setupApp(t, "")
	token := registerUser(t, app, "Ada", "ada@example.com")
	pathID := createDraftPath(t, app, token, 4)

	status, _ := doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/learning-paths/%d/weeks/1/complete", pathID), token,
		map[string]interface{}{"confidence": 9})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLogSessionEndpoint(t *testing.T) {
	app, _ := setupApp(t, "")
	token := registerUser(t, app, "Ada", "ada@example.com")
	pathID := createDraftPath(t, app, token, 4)

	status, _ := doRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/learning-paths/%d/log-session", pathID), token,
		map[string]interface{}{
			"sessionStart": "2026-08-30T10:00:00Z",
			"sessionEnd":   "2026-08-30T10:45:00Z",
			"duration":     45,
			"interactions": []interface{}{"a", "b", "c"},
		})
	require.Equal(t, fiber.StatusOK, status)

	status, analytics := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/learning-paths/%d/analytics", pathID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	data := analytics["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["totalSessions"])
	assert.Equal(t, float64(45), data["averageSessionTime"])
}

func TestProgressEndpointsRequireOwnership(t *testing.T) {
	app, _ := setupApp(t, "")
	owner := registerUser(t, app, "Ada", "ada@example.com")
	intruder := registerUser(t, app, "Mallory", "mallory@example.com")
	pathID := createDraftPath(t, app, owner, 4)

	status, _ := doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/learning-paths/%d/weeks/1/complete", pathID), intruder,
		map[string]interface{}{"hoursSpent": 1})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/learning-paths/%d/analytics", pathID), intruder, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
