package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is one device payload as returned by the cloud for a webserver.
type Entry struct {
	InstallationID string         `json:"installation_id"`
	WebServerID    string         `json:"webserver_id"`
	Device         map[string]any `json:"device"`
}

// Cycle is one polling round: the payloads received and the ids the cloud
// stopped reporting.
type Cycle struct {
	Entries []Entry  `json:"entries"`
	Removed []string `json:"removed"`
}

type Capture struct {
	Cycles []Cycle `json:"cycles"`
}

// LoadCapture reads a recorded sequence of cloud responses.
func LoadCapture(path string) (*Capture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var capture Capture
	if err := json.NewDecoder(file).Decode(&capture); err != nil {
		return nil, fmt.Errorf("decode capture %s: %w", path, err)
	}
	return &capture, nil
}

// Store keeps the latest device snapshots in a JSON file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() ([]map[string]any, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snaps []map[string]any
	if err := json.NewDecoder(file).Decode(&snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (s *Store) Save(snaps []map[string]any) error {
	tmpPath := s.path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snaps); err != nil {
		file.Close()
		return err
	}
	file.Sync()
	file.Close()

	return os.Rename(tmpPath, s.path)
}
