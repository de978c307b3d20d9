package middlewares

import (
	"strings"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/configs"
	"github.com/UnderratedBeast/UniqueFabric-Backend/models"
	"github.com/UnderratedBeast/UniqueFabric-Backend/responses"
	"github.com/UnderratedBeast/UniqueFabric-Backend/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Protect validates the Bearer token and loads the authenticated user into
// Locals for downstream handlers.
func Protect(users *store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return responses.Unauthorized(c, "Not authorized, no token")
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			return responses.Unauthorized(c, "Invalid authorization header format")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(bearerToken[1], claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(configs.EnvJWTSecret()), nil
		})
		if err != nil || !token.Valid {
			return responses.Unauthorized(c, "Not authorized, token failed")
		}

		userID, ok := claims["userId"].(string)
		if !ok || userID == "" {
			return responses.Unauthorized(c, "User ID not found in token")
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return responses.Unauthorized(c, "Invalid user ID format")
		}

		user, err := users.FindByID(c.Context(), objID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				return responses.Unauthorized(c, "User not found")
			}
			return responses.Error(c, err)
		}

		c.Locals("userId", userID)
		c.Locals("user", user)
		return c.Next()
	}
}

// RequireRoles gates a route to the given roles. Must run after Protect.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return responses.Unauthorized(c, "Not authorized")
		}
		if !user.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(responses.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Access denied",
			})
		}
		return c.Next()
	}
}

// CurrentUser extracts the authenticated user set by Protect.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok
}
