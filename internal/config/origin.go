package config

import (
	"fmt"
	"net/url"
	"strings"
)

// SanitizeAllowOrigin validates a CORS allow-origin value for the ingestion
// endpoint. "*" passes through unchanged; anything else must be a bare
// http(s) origin and is returned as lowercase scheme://host[:port].
func SanitizeAllowOrigin(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", fmt.Errorf("origin cannot be empty")
	}
	if cleaned == "*" {
		return cleaned, nil
	}

	cleaned = strings.ToLower(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "/")

	if strings.ContainsAny(cleaned, " \t\r\n") {
		return "", fmt.Errorf("origin cannot contain whitespace")
	}
	if strings.Contains(cleaned, "*") {
		return "", fmt.Errorf("partial wildcards are not allowed")
	}
	if !strings.HasPrefix(cleaned, "http://") && !strings.HasPrefix(cleaned, "https://") {
		return "", fmt.Errorf("origin must start with http:// or https://")
	}

	u, err := url.Parse(cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid origin format")
	}
	if u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", fmt.Errorf("origin must not include path, query, fragment, or credentials")
	}

	return u.Scheme + "://" + u.Host, nil
}
