package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/flows"
	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
	"github.com/botwire/go-wa-gateway/session"
)

func TestSessionUnknownProfile(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Session("no-such-profile")
	require.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	require.Zero(t, f.dialer.DialCount())
}

func TestConcurrentFirstAccessYieldsOneSession(t *testing.T) {
	f := setupTestFixture(t)

	const callers = 32
	results := make([]*session.Session, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := f.manager.Session(testProfileID)
			if err == nil {
				results[i] = sess
			}
		}(i)
	}
	wg.Wait()

	first := results[0]
	require.NotNil(t, first)
	for _, sess := range results {
		require.Same(t, first, sess)
	}
}

func TestRemoveTearsDownSession(t *testing.T) {
	f := setupTestFixture(t)
	sess := f.session(t)
	client := f.connect(t, sess)
	client.EmitOpened()

	f.manager.Remove(testProfileID)

	require.True(t, client.Closed())
	require.Empty(t, f.dialer.OpenClients())

	// A later access yields a fresh session object.
	again, err := f.manager.Session(testProfileID)
	require.NoError(t, err)
	require.NotSame(t, sess, again)
}

func TestAssignFlowCapacity(t *testing.T) {
	f := setupTestFixture(t)

	ids := make([]string, 4)
	for i := range ids {
		flow := &flows.Flow{Name: "flow", Available: true}
		require.NoError(t, f.flowRepo.Upsert(flow))
		ids[i] = flow.ID
	}

	for _, id := range ids[:3] {
		require.NoError(t, f.manager.AssignFlow(testProfileID, id))
	}
	err := f.manager.AssignFlow(testProfileID, ids[3])
	require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	bot, err := f.chatbotRepo.GetByProfile(testProfileID)
	require.NoError(t, err)
	require.Len(t, bot.FlowIDs, 3)
}

func TestAssignFlowUnknownIDs(t *testing.T) {
	f := setupTestFixture(t)

	err := f.manager.AssignFlow("no-such-profile", "whatever")
	require.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	err = f.manager.AssignFlow(testProfileID, "no-such-flow")
	require.ErrorIs(t, err, apperrors.ErrFlowNotFound)
}

func TestShutdownClosesAllSessions(t *testing.T) {
	f := setupTestFixture(t)
	sess := f.session(t)
	client := f.connect(t, sess)
	client.EmitOpened()
	client.EmitCredentials(credentials.Bundle(`{"keys":"material"}`))

	f.manager.Shutdown()
	require.Empty(t, f.dialer.OpenClients())

	// Credentials survive shutdown so the session resumes next start.
	bundle, err := f.store.Load(testProfileID)
	require.NoError(t, err)
	require.False(t, bundle.Empty())
}
