package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"autolink-referral/internal/config"
	"autolink-referral/internal/core/domain"
	"autolink-referral/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func newAuthTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(cfg))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(TenantID(c))
	})
	app.Get("/admin", AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret: "test-secret",
			Issuer: "autolink-platform",
		},
	}
}

func TestAuthMiddlewareBindsTenantFromToken(t *testing.T) {
	cfg := authTestConfig()
	app := newAuthTestApp(cfg)

	token, err := jwt.GenerateToken("tenant-1", "user-1", string(domain.RoleUser), cfg.JWT.Secret, cfg.JWT.Issuer, 5)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "tenant-1" {
		t.Errorf("bound tenant = %q, want tenant-1", body)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	cfg := authTestConfig()
	app := newAuthTestApp(cfg)

	foreign, err := jwt.GenerateToken("tenant-1", "user-1", string(domain.RoleUser), cfg.JWT.Secret, "someone-else", 5)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"malformed token", "Bearer not-a-token"},
		{"wrong issuer", "Bearer " + foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}

func TestRoleMiddlewareGatesAdminRoutes(t *testing.T) {
	cfg := authTestConfig()
	app := newAuthTestApp(cfg)

	userToken, err := jwt.GenerateToken("tenant-1", "user-1", string(domain.RoleUser), cfg.JWT.Secret, cfg.JWT.Issuer, 5)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	adminToken, err := jwt.GenerateToken("tenant-1", "admin-1", string(domain.RoleAdmin), cfg.JWT.Secret, cfg.JWT.Issuer, 5)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("USER on admin route: status = %d, want 403", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("ADMIN on admin route: status = %d, want 200", resp.StatusCode)
	}
}
