package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint
// configuration. Exact matches win over prefix matches; prefix patterns must
// end in "/" so "/api/runs/" covers "/api/runs/{id}" and its artifacts.
// Returns nil when nothing matches, which sends the request to the default
// limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if strings.HasSuffix(config.Path, "/") &&
			strings.HasPrefix(path, config.Path) &&
			config.Method == method {
			return config
		}
	}

	return nil
}
