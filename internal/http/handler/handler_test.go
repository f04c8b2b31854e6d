package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"docverify/internal/http/middleware"
)

func testApp(t *testing.T, pingErr error) *fiber.App {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	if pingErr != nil {
		mock.ExpectPing().WillReturnError(pingErr)
	} else {
		mock.ExpectPing()
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, db, prometheus.NewRegistry())
	return app
}

func TestHealthz(t *testing.T) {
	app := testApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		app := testApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("db unavailable", func(t *testing.T) {
		app := testApp(t, assert.AnError)

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestMetrics(t *testing.T) {
	app := testApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUnknownRouteGetsStandardError(t *testing.T) {
	app := testApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}
