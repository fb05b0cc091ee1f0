// Package truelayer syncs bank transactions into the ledger through the
// TrueLayer data API: it stores authorized connections, keeps their tokens
// fresh, fetches transaction pages and converts them into candidate batches.
package truelayer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Connection is one authorized bank link. Tokens rotate on refresh, the ID is
// the stable handle commands use to name a connection.
type Connection struct {
	ID           string    `json:"connection_id"`
	Provider     string    `json:"provider_name"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	LastSync     time.Time `json:"last_sync,omitempty"`
}

// ConnectionStore persists connections as a JSON list with owner-only
// permissions: the file holds live bank credentials.
type ConnectionStore struct {
	path string
}

// NewConnectionStore returns a store backed by the given file.
func NewConnectionStore(path string) *ConnectionStore {
	return &ConnectionStore{path: path}
}

// Load reads all connections. A missing file means no connections yet.
func (s *ConnectionStore) Load() ([]Connection, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read connections file: %w", err)
	}
	var connections []Connection
	if err := json.Unmarshal(data, &connections); err != nil {
		return nil, fmt.Errorf("cannot parse connections file %q: %w", s.path, err)
	}
	return connections, nil
}

// Save writes all connections, replacing the file.
func (s *ConnectionStore) Save(connections []Connection) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	data, err := json.MarshalIndent(connections, "", "    ")
	if err != nil {
		return fmt.Errorf("cannot encode connections: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("cannot write connections file: %w", err)
	}
	return nil
}

// Add stores a new connection and returns it with its assigned ID and
// creation time filled in.
func (s *ConnectionStore) Add(c Connection) (Connection, error) {
	connections, err := s.Load()
	if err != nil {
		return Connection{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	connections = append(connections, c)
	if err := s.Save(connections); err != nil {
		return Connection{}, err
	}
	return c, nil
}

// Update replaces the stored connection with the same ID. An unknown ID is
// appended rather than lost: the caller holds fresher tokens than the file.
func (s *ConnectionStore) Update(c Connection) error {
	connections, err := s.Load()
	if err != nil {
		return err
	}
	found := false
	for i := range connections {
		if connections[i].ID == c.ID {
			connections[i] = c
			found = true
			break
		}
	}
	if !found {
		connections = append(connections, c)
	}
	return s.Save(connections)
}

// Remove deletes the connection with the given ID.
func (s *ConnectionStore) Remove(id string) error {
	connections, err := s.Load()
	if err != nil {
		return err
	}
	kept := connections[:0]
	for _, c := range connections {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(connections) {
		return fmt.Errorf("no connection with id %q", id)
	}
	return s.Save(kept)
}

// Get returns the connection with the given ID.
func (s *ConnectionStore) Get(id string) (Connection, error) {
	connections, err := s.Load()
	if err != nil {
		return Connection{}, err
	}
	for _, c := range connections {
		if c.ID == id {
			return c, nil
		}
	}
	return Connection{}, fmt.Errorf("no connection with id %q", id)
}
