//go:build docker

package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration for Docker deployments.
func createFiberConfig(appName string, views fiber.Views) fiber.Config {
	return fiber.Config{
		AppName:     appName,
		Views:       views,
		ProxyHeader: fiber.HeaderXForwardedFor,
	}
}

// createListenConfig silences the startup banner; container logs are
// collected as structured lines.
func createListenConfig() fiber.ListenConfig {
	return fiber.ListenConfig{
		DisableStartupMessage: true,
	}
}
