package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePayPalReturnWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.All("/admin/paypal_return", HandlePayPalReturn)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin/paypal_return", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHandlePayPalReturnWithAuthQuery(t *testing.T) {
	app := fiber.New()
	app.All("/admin/paypal_return", HandlePayPalReturn)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin/paypal_return?auth=tok123", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/upgrade", resp.Header.Get("Location"))
}

func TestHandlePayPalReturnWithAuthForm(t *testing.T) {
	app := fiber.New()
	app.All("/admin/paypal_return", HandlePayPalReturn)

	req := httptest.NewRequest(fiber.MethodPost, "/admin/paypal_return", strings.NewReader("auth=tok123"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
}
