package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pathcrafter/config"
	"pathcrafter/routes"
	"pathcrafter/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupApp wires the full application against a fresh in-memory database.
// mlServiceURL may be empty when a test never reaches the generation gateway.
func setupApp(t *testing.T, mlServiceURL string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:controllers_test_%d?mode=memory&cache=shared",
		atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{
		JWTSecret:           "testsecret",
		MLServiceURL:        mlServiceURL,
		MLServiceTimeoutSec: 2,
		MLServiceMaxRetries: 3,
	}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, zap.NewNop().Sugar())
	return app, db
}

// doRequest performs one request against the app and decodes the JSON body.
func doRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), "body: %s", raw)
	}
	return resp.StatusCode, result
}

// registerUser creates an account and returns its token.
func registerUser(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()

	status, body := doRequest(t, app, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createDraftPath creates a draft learning path and returns its id.
func createDraftPath(t *testing.T, app *fiber.App, token string, durationWeeks int) int {
	t.Helper()

	status, body := doRequest(t, app, http.MethodPost, "/api/learning-paths/", token, map[string]interface{}{
		"title":                "Backend Engineering Path",
		"description":          "From basics to production services",
		"goals":                []string{"build an API"},
		"preferredDifficulty":  "intermediate",
		"availableTimePerWeek": 10,
		"durationWeeks":        durationWeeks,
		"preferredTopics":      []string{"go", "databases"},
	})
	require.Equal(t, fiber.StatusCreated, status)

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "unexpected body: %v", body)
	id, ok := data["id"].(float64)
	require.True(t, ok)
	return int(id)
}
