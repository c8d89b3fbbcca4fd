package config

import (
	"strconv"
	"time"
)

const (
	maxQRAttemptsVar  = "MAX_QR_ATTEMPTS"
	reconnectDelayVar = "RECONNECT_DELAY_SECONDS"
	maxFlowsVar       = "MAX_FLOWS"

	defaultMaxQRAttempts  = 3
	defaultReconnectDelay = 5 * time.Second
	defaultMaxFlows       = 3
)

// SessionConfig carries the session lifecycle policy values: the pairing
// attempt ceiling, the fixed reconnect delay and the per-profile flow limit.
type SessionConfig interface {
	GetMaxQRAttempts() int
	GetReconnectDelay() time.Duration
	GetMaxFlows() int
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetMaxQRAttempts() int {
	return getEnvInt(maxQRAttemptsVar, defaultMaxQRAttempts)
}

func (Session) GetReconnectDelay() time.Duration {
	seconds := getEnvInt(reconnectDelayVar, 0)
	if seconds <= 0 {
		return defaultReconnectDelay
	}
	return time.Duration(seconds) * time.Second
}

func (Session) GetMaxFlows() int {
	return getEnvInt(maxFlowsVar, defaultMaxFlows)
}

func getEnvInt(envVar string, defaultValue int) int {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
