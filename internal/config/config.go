package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// BackendConfig describes how the verification backend is reached.
type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
	GetBackendClientID() string
	GetBackendClientSecret() string
	GetBackendTokenURL() string
}

// SessionConfig describes where agent sessions are persisted and how the
// browser cookie identifying them is signed.
type SessionConfig interface {
	GetSessionStore() string
	GetSQLitePath() string
	GetRedisURL() string
	GetSessionSecret() string
	GetSessionMaxAge() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Session
}

// New returns a config backed by environment variables only.
func New() Config {
	return newFromSource(source{})
}

// Load returns a config whose defaults come from the YAML file at path.
// Environment variables still take precedence over the file.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return newFromSource(source{file: values}), nil
}

func newFromSource(src source) Config {
	return mainConfig{
		EnvVars: EnvVars{src: src},
		Cors:    Cors{src: src},
		Backend: Backend{src: src},
		Session: Session{src: src},
	}
}
