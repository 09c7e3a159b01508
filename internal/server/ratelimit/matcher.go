package ratelimit

import "strings"

// exemptRoutes are never limited, whatever the configuration says.
var exemptRoutes = map[string]bool{
	"GET /health": true,
}

// Endpoint returns the limit for a route. An exact path wins, then the
// longest configured prefix ending in "/". Exempt routes get a zero-rate
// entry, and nil means the defaults apply.
func (c *Config) Endpoint(method, path string) *EndpointConfig {
	if exemptRoutes[method+" "+path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	var best *EndpointConfig
	for i := range c.EndpointConfigs {
		ec := &c.EndpointConfigs[i]
		if ec.Method != method {
			continue
		}
		if ec.Path == path {
			return ec
		}
		if strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) {
			if best == nil || len(ec.Path) > len(best.Path) {
				best = ec
			}
		}
	}
	return best
}
