package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoIdentity = errors.New("invalid token in context")

// Claims returns the verified JWT claims placed in locals by the JWT middleware.
func Claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := Claims(c)
	if err != nil {
		return uuid.Nil, err
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// GetRole returns the role claim, or "" when absent.
func GetRole(c *fiber.Ctx) string {
	claims, err := Claims(c)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// ViewerID returns the caller's ID on routes where auth is optional, or
// uuid.Nil for anonymous requests.
func ViewerID(c *fiber.Ctx) uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return uuid.Nil
	}
	return id
}
