package middleware

import (
	"movie_browser/internal/service"
	errorHandler "movie_browser/pkg/error"
	"movie_browser/pkg/response"
	"movie_browser/util"
	"regexp"

	"github.com/gofiber/fiber/v2"
)

const TokenCookieName = "token"

// NewAuthMiddleware accepts requests carrying a valid, non-blacklisted token cookie.
// The claims and the raw token are stored in Locals as "jwtUserData" and "token".
func NewAuthMiddleware(blacklist service.ITokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(TokenCookieName, "")
		if token == "" {
			return response.ResponseError(c, response.AccessDenied, fiber.StatusUnauthorized)
		}

		blacklisted, err := blacklist.Contains(c.UserContext(), token)
		if err != nil {
			errorHandler.SaveError("Redis Error on checking jwt blacklist", err)
		}
		if blacklisted {
			return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
		}

		jwtToken, claims, err := util.VerifyToken(token)
		if err != nil || jwtToken == nil || claims == nil {
			return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
		}

		c.Locals("token", token)
		c.Locals("jwtUserData", claims)
		return c.Next()
	}
}

var (
	LocalhostRegex = regexp.MustCompile(`(?i)^(https?://)?localhost(:\d{4})?$`)
)
