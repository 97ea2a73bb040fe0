package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, cfg *config.Config) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/login", func(c *fiber.Ctx) error {
		return LoginAPI(c, cfg)
	})
	auth.Post("/logout", LogoutAPI)

	// Protected routes
	auth.Use(AuthMiddleware(cfg))
	auth.Post("/change-password", func(c *fiber.Ctx) error {
		return ChangePasswordAPI(c, cfg)
	})
}

// AuthMiddleware validates JWT and sets user context
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerOrCookieToken(c)
		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "No token found"})
		}

		claims, err := ValidateJWT(cfg.JWTSecret, tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
		}

		user := &models.User{
			ID:       claims.UserID,
			Email:    claims.Email,
			Tier:     claims.Tier,
			IsActive: true,
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_tier", claims.Tier)
		c.Locals("user", user)

		return c.Next()
	}
}

// ServiceAuthMiddleware authorizes job invocations: either the static
// service credential used by the self-trigger and the monthly schedule, or
// a valid user JWT for manual runs.
func ServiceAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerOrCookieToken(c)
		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "No token found"})
		}

		if cfg.Job.ServiceToken != "" &&
			subtle.ConstantTimeCompare([]byte(tokenString), []byte(cfg.Job.ServiceToken)) == 1 {
			c.Locals("service_invocation", true)
			return c.Next()
		}

		if _, err := ValidateJWT(cfg.JWTSecret, tokenString); err == nil {
			return c.Next()
		}

		return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
	}
}

func bearerOrCookieToken(c *fiber.Ctx) string {
	if tokenString := c.Cookies("jwt_token"); tokenString != "" {
		return tokenString
	}
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
