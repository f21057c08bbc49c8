package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether the database is reachable.
type Pinger func(ctx context.Context) error

// HandleHealth reports liveness without touching the database.
func HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "booster",
	})
}

// HandleUp is the container health check: 200 while the database answers.
func HandleUp(ping Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if ping == nil || ping(ctx) != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
		}
		return c.SendString("OK")
	}
}

// HandleVersion reports the running build.
func HandleVersion(version string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": version})
	}
}
