package filestore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/credentials/filestore"
)

func TestLoadAbsentReturnsEmptyBundle(t *testing.T) {
	store := filestore.New(t.TempDir())

	bundle, err := store.Load("p1")
	require.NoError(t, err)
	require.True(t, bundle.Empty())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := filestore.New(t.TempDir())

	require.NoError(t, store.Save("p1", credentials.Bundle(`{"keys":"material"}`)))

	bundle, err := store.Load("p1")
	require.NoError(t, err)
	require.Equal(t, credentials.Bundle(`{"keys":"material"}`), bundle)
}

func TestSaveOverwritesSnapshot(t *testing.T) {
	store := filestore.New(t.TempDir())

	require.NoError(t, store.Save("p1", credentials.Bundle(`{"v":1}`)))
	require.NoError(t, store.Save("p1", credentials.Bundle(`{"v":2}`)))

	bundle, err := store.Load("p1")
	require.NoError(t, err)
	require.Equal(t, credentials.Bundle(`{"v":2}`), bundle)
}

func TestBundlesAreProfileScoped(t *testing.T) {
	store := filestore.New(t.TempDir())

	require.NoError(t, store.Save("p1", credentials.Bundle(`{"owner":"p1"}`)))
	require.NoError(t, store.Save("p2", credentials.Bundle(`{"owner":"p2"}`)))
	require.NoError(t, store.Delete("p1"))

	bundle, err := store.Load("p1")
	require.NoError(t, err)
	require.True(t, bundle.Empty())

	bundle, err = store.Load("p2")
	require.NoError(t, err)
	require.Equal(t, credentials.Bundle(`{"owner":"p2"}`), bundle)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := filestore.New(t.TempDir())

	require.NoError(t, store.Delete("p1"))
	require.NoError(t, store.Save("p1", credentials.Bundle(`{}`)))
	require.NoError(t, store.Delete("p1"))
	require.NoError(t, store.Delete("p1"))
}
