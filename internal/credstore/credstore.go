// Package credstore persists per-session credential references so sessions
// survive process restarts without re-pairing. The blob content is opaque to
// the rest of the gateway; only the protocol client factory interprets the
// stored device identity.
package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Credentials struct {
	SessionID string    `json:"sessionId"`
	JID       string    `json:"jid"`
	SavedAt   time.Time `json:"savedAt"`
}

// Store is a file-per-session blob store under a single directory.
type Store struct {
	Dir string
}

func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.Dir, sessionID+".json")
}

// Save writes the credential blob for a session. Called only when the
// protocol client signals updated credentials, never speculatively.
func (s *Store) Save(sessionID, jid string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(Credentials{
		SessionID: sessionID,
		JID:       jid,
		SavedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(sessionID), data, 0o600)
}

// Load reads the blob for one session. Returns os.ErrNotExist-wrapped errors
// when the session was never paired.
func (s *Store) Load(sessionID string) (*Credentials, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("corrupt credential file for %s: %w", sessionID, err)
	}
	return &creds, nil
}

// Delete removes the blob on terminal logout. Missing files are fine.
func (s *Store) Delete(sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns all saved credentials, used at boot to restore sessions.
func (s *Store) List() ([]*Credentials, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var all []*Credentials
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sessionID := strings.TrimSuffix(entry.Name(), ".json")
		creds, err := s.Load(sessionID)
		if err != nil {
			// file rusak, skip saja
			continue
		}
		all = append(all, creds)
	}
	return all, nil
}
