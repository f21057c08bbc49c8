package middleware

import "github.com/gofiber/fiber/v3"

// TrackAllowHeaders lists the request headers tracking clients may send.
const TrackAllowHeaders = "authorization, x-client-info, apikey, content-type"

// TrackCORS stamps the ingestion endpoint's CORS headers on every response,
// errors included, so browsers can read them from any site.
func TrackCORS(allowOrigin string) fiber.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(c fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, allowOrigin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, TrackAllowHeaders)
		if allowOrigin != "*" {
			c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
		}
		return c.Next()
	}
}
