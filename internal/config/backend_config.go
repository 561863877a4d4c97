package config

import "time"

const (
	backendURLVar          = "BACKEND_URL"
	backendTimeoutVar      = "BACKEND_TIMEOUT"
	backendClientIDVar     = "BACKEND_CLIENT_ID"
	backendClientSecretVar = "BACKEND_CLIENT_SECRET"
	backendTokenURLVar     = "BACKEND_TOKEN_URL"
)

type Backend struct {
	src source
}

var _ BackendConfig = Backend{}

func (b Backend) GetBackendURL() string {
	return b.src.get(backendURLVar, "http://localhost:8081")
}

// GetBackendTimeout bounds every lookup made against the backend.
func (b Backend) GetBackendTimeout() time.Duration {
	return b.src.duration(backendTimeoutVar, 5*time.Second)
}

// GetBackendClientID enables client-credentials auth towards the backend when set.
func (b Backend) GetBackendClientID() string {
	return b.src.get(backendClientIDVar, "")
}

func (b Backend) GetBackendClientSecret() string {
	return b.src.get(backendClientSecretVar, "")
}

func (b Backend) GetBackendTokenURL() string {
	return b.src.get(backendTokenURLVar, "")
}
