package instance

import "github.com/angelmondragon/ecomagent-backend/pkg/env"

// GetID returns the process instance identifier: the dyno name on hosted
// platforms, the container hostname otherwise, or "local".
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("HOSTNAME", "local")
}
