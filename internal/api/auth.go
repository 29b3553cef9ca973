package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Mode      string // "api-key", "jwt", "none"
	APIKey    string
	JWTSecret string
}

// NewAuthMiddleware returns a Fiber middleware that validates the
// Authorization header. Probe endpoints are always open.
func NewAuthMiddleware(cfg AuthConfig, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Mode == "none" {
			return c.Next()
		}

		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return problemResponse(c, fiber.StatusUnauthorized,
				"missing_auth", "Unauthorized",
				"Authorization header is required")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return problemResponse(c, fiber.StatusUnauthorized,
				"invalid_auth_scheme", "Unauthorized",
				"Authorization header must use Bearer scheme")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		switch cfg.Mode {
		case "api-key":
			if cfg.APIKey != "" && token == cfg.APIKey {
				return c.Next()
			}
		case "jwt":
			if subject, err := validateJWT(token, cfg.JWTSecret); err == nil {
				c.Locals("subject", subject)
				return c.Next()
			}
		}

		logger.Warn().
			Str("path", path).
			Str("method", c.Method()).
			Msg("unauthorized request: invalid credentials")

		return problemResponse(c, fiber.StatusUnauthorized,
			"invalid_credentials", "Unauthorized",
			"Invalid credentials")
	}
}

// validateJWT checks an HS256 token and returns its subject.
func validateJWT(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	sub, _ := claims.GetSubject()
	return sub, nil
}

// problemResponse returns an RFC 7807 Problem Detail error response.
func problemResponse(c *fiber.Ctx, status int, errType, title, detail string) error {
	return c.Status(status).JSON(ProblemDetail{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	})
}
