package ratelimit

import (
	"strings"
)

// unlimited marks an endpoint that is never throttled.
var unlimited = EndpointConfig{}

// MatchEndpoint resolves the config governing a path+method. Exact
// matches win over prefix matches (configs whose Path ends in "/", so
// "/runs/" covers "/runs/{id}"). Health probes are never throttled;
// returns nil when no config applies and the caller should fall back
// to the default limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &unlimited
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	for i := range configs {
		if configs[i].Method != method || !strings.HasSuffix(configs[i].Path, "/") {
			continue
		}
		if strings.HasPrefix(path, configs[i].Path) {
			return &configs[i]
		}
	}

	return nil
}
