package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botwire/go-wa-gateway/session"
	"github.com/botwire/go-wa-gateway/transport"
)

func TestReconnectPolicyDecide(t *testing.T) {
	policy := session.ReconnectPolicy{MaxQRAttempts: 3, RetryDelay: 5 * time.Second}

	tests := []struct {
		name       string
		reason     transport.CloseReason
		qrAttempts int
		retry      bool
	}{
		{name: "transient below ceiling", reason: transport.ReasonConnectionLost, qrAttempts: 0, retry: true},
		{name: "server restart below ceiling", reason: transport.ReasonServerRestart, qrAttempts: 2, retry: true},
		{name: "stream error below ceiling", reason: transport.ReasonStreamError, qrAttempts: 1, retry: true},
		{name: "unknown reason below ceiling", reason: transport.ReasonUnknown, qrAttempts: 0, retry: true},
		{name: "logged out never retries", reason: transport.ReasonLoggedOut, qrAttempts: 0, retry: false},
		{name: "transient at ceiling", reason: transport.ReasonConnectionLost, qrAttempts: 3, retry: false},
		{name: "transient above ceiling", reason: transport.ReasonConnectionLost, qrAttempts: 4, retry: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := policy.Decide(tc.reason, tc.qrAttempts)
			require.Equal(t, tc.retry, decision.Retry)
			if tc.retry {
				require.Equal(t, 5*time.Second, decision.Delay)
			}
		})
	}
}
