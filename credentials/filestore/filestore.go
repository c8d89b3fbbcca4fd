// Package filestore persists credential bundles as one file per profile
// under a data folder, surviving process restarts so a session can resume
// without re-pairing.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/botwire/go-wa-gateway/credentials"
)

var _ credentials.Store = (*FileStore)(nil)

type FileStore struct {
	dir string
}

func New(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Load(profileID string) (credentials.Bundle, error) {
	data, err := os.ReadFile(s.path(profileID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore Load] read bundle")
	}
	return data, nil
}

func (s *FileStore) Save(profileID string, bundle credentials.Bundle) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileStore Save] create data folder")
	}

	// Write the snapshot to a temp file first so a crash mid-write never
	// leaves a truncated bundle behind.
	tmp, err := os.CreateTemp(s.dir, "creds-*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileStore Save] create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bundle); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore Save] write bundle")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore Save] close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path(profileID)); err != nil {
		return errors.Wrap(err, "[FileStore Save] replace bundle")
	}
	return nil
}

func (s *FileStore) Delete(profileID string) error {
	err := os.Remove(s.path(profileID))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore Delete] remove bundle")
	}
	return nil
}

func (s *FileStore) path(profileID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("auth_info_%s.json", profileID))
}
