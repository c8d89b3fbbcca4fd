package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	jwtSecretVar = "JWT_SECRET"
	bridgeURLVar = "BRIDGE_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" || port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "WA Gateway")
}

// GetDataFolder returns the directory under which per-profile credential
// bundles are persisted.
func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "dev-only-secret")
}

// GetBridgeURL returns the websocket URL of the protocol bridge that owns
// the actual messaging wire protocol.
func (EnvVars) GetBridgeURL() string {
	return GetEnv(bridgeURLVar, "ws://localhost:9090")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
