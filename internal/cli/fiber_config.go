//go:build !docker

package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string, views fiber.Views) fiber.Config {
	return fiber.Config{
		AppName: appName,
		Views:   views,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader: fiber.HeaderXForwardedFor,
	}
}

// createListenConfig keeps a single process: the session janitor and the
// SQLite driver both assume one.
func createListenConfig() fiber.ListenConfig {
	return fiber.ListenConfig{}
}
