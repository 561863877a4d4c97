package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFile mirrors the YAML schema accepted by Load.
type configFile struct {
	Server struct {
		Port           string   `yaml:"port"`
		AppName        string   `yaml:"app_name"`
		Env            string   `yaml:"env"`
		LogLevel       string   `yaml:"log_level"`
		BaseURL        string   `yaml:"base_url"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Backend struct {
		URL          string `yaml:"url"`
		Timeout      string `yaml:"timeout"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		TokenURL     string `yaml:"token_url"`
	} `yaml:"backend"`
	Session struct {
		Store      string `yaml:"store"`
		SQLitePath string `yaml:"sqlite_path"`
		RedisURL   string `yaml:"redis_url"`
		Secret     string `yaml:"secret"`
		MaxAge     string `yaml:"max_age"`
	} `yaml:"session"`
}

func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config readFile] read %s: %w", path, err)
	}
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("[config readFile] parse %s: %w", path, err)
	}
	return map[string]string{
		portEnvVar:             f.Server.Port,
		appNameVar:             f.Server.AppName,
		envVar:                 f.Server.Env,
		logLevelEnvVar:         f.Server.LogLevel,
		baseURLVar:             f.Server.BaseURL,
		allowedOriginsVar:      strings.Join(f.Server.AllowedOrigins, ","),
		backendURLVar:          f.Backend.URL,
		backendTimeoutVar:      f.Backend.Timeout,
		backendClientIDVar:     f.Backend.ClientID,
		backendClientSecretVar: f.Backend.ClientSecret,
		backendTokenURLVar:     f.Backend.TokenURL,
		sessionStoreVar:        f.Session.Store,
		sqlitePathVar:          f.Session.SQLitePath,
		redisURLVar:            f.Session.RedisURL,
		sessionSecretVar:       f.Session.Secret,
		sessionMaxAgeVar:       f.Session.MaxAge,
	}, nil
}
